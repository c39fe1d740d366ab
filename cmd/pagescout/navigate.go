package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/v0xg/pagescout/internal/crawler"
	"github.com/v0xg/pagescout/internal/navigator"
	"github.com/v0xg/pagescout/internal/report"
)

func newNavigateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "navigate",
		Short: "Click and fill the first few interactive elements and record what happens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNavigate(cmd.Context())
		},
	}
}

func runNavigate(ctx context.Context) error {
	s, err := start(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	waitInteractive(ctx, s)

	rep := &report.NavigationReport{
		Header: report.NewHeader(s.cfg.TargetURL, s.title(ctx), time.Now()),
	}
	if shot, err := s.screenshot(ctx, "navigation-initial"); err != nil {
		s.log.Warn("initial screenshot failed", "error", err)
	} else {
		rep.Screenshots = append(rep.Screenshots, shot)
	}

	fmt.Println("→ Exploring...")
	opts := navigator.DefaultOptions()
	opts.ScreenshotDir = s.store.ScreenshotDir()
	opts.Logger = s.log
	ex, err := navigator.New(s.page, opts).Explore(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("  %d clickable, %d inputs\n", ex.Clickables, ex.Inputs)
	results := ex.Results

	passed := 0
	for i, r := range results {
		mark := "✓"
		if r.Success {
			passed++
		} else {
			mark = "✗"
		}
		fmt.Printf("  [%d] %s %s %s\n", i+1, r.Action, r.Selector, mark)
	}

	rep.ClickableElements = ex.Clickables
	rep.InputFields = ex.Inputs
	rep.NavigationTests = len(results)
	rep.Results = results

	path, err := s.store.Save(report.KindNavigation, rep)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d passed, %d failed. Saved to %s\n", passed, len(results)-passed, path)
	return ctx.Err()
}

// waitInteractive gives client-rendered pages a chance to mount before
// anything is detected. Timing out is not fatal.
func waitInteractive(ctx context.Context, s *session) {
	fmt.Printf("→ Waiting for interactive elements... ")
	if crawler.WaitForInteractive(ctx, s.page, s.cfg.ActionTimeout) {
		fmt.Println("done")
		return
	}
	fmt.Println("timed out, continuing")
}
