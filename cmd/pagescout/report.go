package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/v0xg/pagescout/internal/config"
	"github.com/v0xg/pagescout/internal/report"
)

func newReportCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:       "report visual|navigation|testcases",
		Short:     "Print the latest saved report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"visual", "navigation", "testcases"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := report.ParseKind(args[0])
			if err != nil {
				return err
			}
			return runReport(cmd.Context(), kind, watch)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and print each new report as it is saved")
	return cmd
}

// commands maps a report kind to the command that produces it.
var commands = map[report.Kind]string{
	report.KindVisual:     "pagescout visual",
	report.KindNavigation: "pagescout navigate",
	report.KindTestCases:  "pagescout generate",
}

func runReport(ctx context.Context, kind report.Kind, watch bool) error {
	dir := outputDir
	if dir == "" {
		dir = config.OutputDir()
	}
	p := report.NewPrinter(os.Stdout)

	path, err := report.Latest(dir, kind)
	switch {
	case err == nil:
		if err := show(p, kind, path); err != nil {
			return err
		}
	case errors.Is(err, report.ErrNoReports) && watch:
		fmt.Printf("No %s reports in %s yet\n", kind, dir)
	case errors.Is(err, report.ErrNoReports):
		fmt.Printf("✗ No %s reports in %s. Run `%s` first.\n", kind, dir, commands[kind])
		return err
	default:
		return err
	}

	if !watch {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	w, err := report.NewWatcher(dir, kind)
	if err != nil {
		return err
	}
	fmt.Printf("→ Watching %s for new %s reports (Ctrl+C to stop)\n", dir, kind)
	return w.Run(ctx, func(path string) {
		fmt.Println()
		if err := show(p, kind, path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to show %s: %v\n", path, err)
		}
	})
}

func show(p *report.Printer, kind report.Kind, path string) error {
	switch kind {
	case report.KindVisual:
		var r report.VisualReport
		if err := report.Load(path, &r); err != nil {
			return err
		}
		p.Visual(&r, path)
	case report.KindNavigation:
		var r report.NavigationReport
		if err := report.Load(path, &r); err != nil {
			return err
		}
		p.Navigation(&r, path)
	case report.KindTestCases:
		var r report.TestCaseReport
		if err := report.Load(path, &r); err != nil {
			return err
		}
		p.TestCases(&r, path)
	default:
		return fmt.Errorf("unknown report kind %q", kind)
	}
	return nil
}
