package ui

import "levelset/internal/normalize"

// GroupStartMsg indicates measurement of a group has started
type GroupStartMsg struct {
	Index int
	Key   string
}

// ProgressMsg reports measurement progress for the active group
type ProgressMsg struct {
	Index    int
	Progress float64 // 0.0 to 1.0
}

// GroupDoneMsg carries the outcome for one group
type GroupDoneMsg struct {
	Index  int
	Result normalize.Result
}

// AllDoneMsg indicates every group has been processed
type AllDoneMsg struct{}
