package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/v0xg/pagescout/internal/config"
	"github.com/v0xg/pagescout/internal/overlay"
	"github.com/v0xg/pagescout/internal/report"
	"github.com/v0xg/pagescout/internal/visual"
)

func newVisualCmd() *cobra.Command {
	var thresholds string

	cmd := &cobra.Command{
		Use:   "visual",
		Short: "Detect overlapping elements, layout shifts and other visual issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVisual(cmd.Context(), thresholds)
		},
	}
	cmd.Flags().StringVar(&thresholds, "thresholds", "", "TOML file overriding detection thresholds")
	cmd.Flags().IntVar(&width, "width", width, "Viewport width")
	cmd.Flags().IntVar(&height, "height", height, "Viewport height")
	return cmd
}

func runVisual(ctx context.Context, thresholdsPath string) error {
	th, err := config.LoadThresholds(thresholdsPath)
	if err != nil {
		return err
	}

	s, err := start(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	ts := report.Timestamp(time.Now())
	shot := filepath.Join(s.store.ScreenshotDir(), fmt.Sprintf("visual-issues-%s.png", ts))

	fmt.Printf("→ Capturing screenshot... ")
	data, err := s.page.Capture(ctx)
	if err != nil {
		fmt.Println("failed")
		return err
	}
	if err := os.WriteFile(shot, data, 0o644); err != nil {
		fmt.Println("failed")
		return fmt.Errorf("write screenshot: %w", err)
	}
	fmt.Println("done")

	fmt.Printf("→ Detecting visual issues... ")
	issues, err := visual.NewDetector(s.page, th).Detect(ctx)
	if err != nil {
		fmt.Println("failed")
		return fmt.Errorf("detection failed: %w", err)
	}
	if issues == nil {
		issues = []visual.Issue{}
	}
	fmt.Printf("done (%d issues)\n", len(issues))
	for _, is := range issues {
		logVerbose("  [%s] %s", is.Severity, is.Description)
	}

	rep := &report.VisualReport{
		Header:            report.NewHeader(s.cfg.TargetURL, s.title(ctx), time.Now()),
		VisualIssues:      issues,
		HighlightedIssues: visual.SelectHighlights(issues),
	}
	rep.Screenshots = append(rep.Screenshots, shot)

	if n := len(rep.HighlightedIssues); n > 0 {
		fmt.Printf("→ Highlighting %d issues... ", n)
		markers := visual.Markers(ctx, s.page, rep.HighlightedIssues)
		highlighted, err := overlay.HighlightPNG(data, markers)
		if err != nil {
			fmt.Println("failed")
			return err
		}
		out := filepath.Join(s.store.ScreenshotDir(), fmt.Sprintf("visual-issues-%s-highlighted.png", ts))
		if err := os.WriteFile(out, highlighted, 0o644); err != nil {
			fmt.Println("failed")
			return fmt.Errorf("write screenshot: %w", err)
		}
		rep.Screenshots = append(rep.Screenshots, out)
		fmt.Printf("done (%d placed)\n", len(markers))
	} else {
		rep.HighlightedIssues = []visual.HighlightedIssue{}
	}

	path, err := s.store.Save(report.KindVisual, rep)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Saved to %s\n", path)
	return nil
}
