package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"levelset/internal/cli"
	"levelset/internal/logging"
	"levelset/internal/normalize"
	"levelset/internal/source"
	"levelset/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version bool     `short:"v" help:"Show version information"`
	Target  float64  `short:"t" default:"-18" placeholder:"LUFS" help:"Target integrated loudness in LUFS"`
	Logs    bool     `help:"Save a detailed run report"`
	Files   []string `arg:"" name:"files" help:"WAV files to normalise" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("levelset"),
		kong.Description("Group loudness normalizer (ITU-R BS.1770-4)"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	// Open every file up front so a bad file aborts the run before any
	// gain is committed anywhere.
	segments := make([]normalize.Segment, 0, len(cliArgs.Files))
	groupFiles := make(map[string][]string)
	for _, path := range cliArgs.Files {
		seg, err := source.Open(path)
		if err != nil {
			cli.PrintError(fmt.Sprintf("%s: %v", path, err))
			os.Exit(1)
		}
		defer seg.Close()
		segments = append(segments, seg)
		groupFiles[seg.GroupKey()] = append(groupFiles[seg.GroupKey()], path)
	}

	groups := normalize.BuildGroups(segments)
	infos := make([]ui.GroupInfo, len(groups))
	details := make([]logging.GroupDetail, len(groups))
	for i, g := range groups {
		infos[i] = ui.GroupInfo{Key: g.Key, Segments: len(g.Segments)}
		details[i] = logging.GroupDetail{Key: g.Key, Files: groupFiles[g.Key]}
	}

	// Create the Bubbletea UI model
	model := ui.NewModel(cliArgs.Target, infos)

	// Start the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	startTime := time.Now()

	// Start the run in the background, feeding progress to the UI
	done := startRun(p, cliArgs.Target, segments)

	// Run the program
	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}

	// The outcome only ever arrives over the channel. If it is not there
	// yet the user quit mid-run while a group was still being processed;
	// report nothing rather than a half-built table.
	var out runOutcome
	select {
	case out = <-done:
	default:
		fmt.Println("Aborted before the run finished; no summary written.")
		os.Exit(1)
	}

	if out.err != nil {
		cli.PrintError(out.err.Error())
		os.Exit(1)
	}

	// The alternate screen is gone now; leave the summary on the terminal.
	if table := logging.BuildResultTable(out.results); len(table.Rows) > 0 {
		fmt.Println(table.String())
	}

	if cliArgs.Logs {
		reportData := logging.ReportData{
			Version:   version,
			Target:    cliArgs.Target,
			StartTime: startTime,
			EndTime:   time.Now(),
			Results:   out.results,
			Groups:    details,
		}
		if err := logging.GenerateReport(reportData); err != nil {
			cli.PrintError(fmt.Sprintf("report: %v", err))
		}
	}
}

// msgSender is the slice of tea.Program the worker needs.
type msgSender interface {
	Send(msg tea.Msg)
}

// runOutcome carries the finished run back to the main goroutine.
type runOutcome struct {
	results []normalize.Result
	err     error
}

// startRun runs the normalization in the background, translating run events
// into UI messages. The outcome is handed over on the returned channel
// before AllDoneMsg fires, so a receive after the UI exits normally never
// blocks, and nothing is shared when the user quits early.
func startRun(p msgSender, target float64, segments []normalize.Segment) <-chan runOutcome {
	done := make(chan runOutcome, 1)
	go func() {
		results, err := normalize.Run(target, segments, normalize.Events{
			GroupStart: func(index int, key string) {
				p.Send(ui.GroupStartMsg{Index: index, Key: key})
			},
			Progress: func(index int, key string, frac float64) {
				p.Send(ui.ProgressMsg{Index: index, Progress: frac})
			},
			GroupDone: func(index int, res normalize.Result) {
				p.Send(ui.GroupDoneMsg{Index: index, Result: res})
			},
		})
		done <- runOutcome{results: results, err: err}
		p.Send(ui.AllDoneMsg{})
	}()
	return done
}
