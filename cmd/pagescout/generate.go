package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/v0xg/pagescout/internal/ai"
	"github.com/v0xg/pagescout/internal/codegen"
	"github.com/v0xg/pagescout/internal/crawler"
	"github.com/v0xg/pagescout/internal/executor"
	"github.com/v0xg/pagescout/internal/gifgen"
	"github.com/v0xg/pagescout/internal/report"
	"github.com/v0xg/pagescout/internal/testgen"
)

type generateOptions struct {
	noExecute bool
	noCode    bool
	useAI     bool
	provider  string
	model     string
	replay    string
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate test cases from the page, run them and write a go-rod test file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.noExecute, "no-execute", false, "Only generate test cases, do not run them")
	cmd.Flags().BoolVar(&opts.noCode, "no-code", false, "Do not write a test file")
	cmd.Flags().BoolVar(&opts.useAI, "ai", false, "Ask an AI provider for additional test cases")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "AI provider: claude, openai (default: from env or claude)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Specific model override")
	cmd.Flags().StringVar(&opts.replay, "replay", "", "Write the execution screenshots as an animated GIF to this file")
	return cmd
}

func runGenerate(ctx context.Context, opts generateOptions) error {
	s, err := start(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	waitInteractive(ctx, s)

	title := s.title(ctx)
	rep := &report.TestCaseReport{
		Header: report.NewHeader(s.cfg.TargetURL, title, time.Now()),
	}
	if shot, err := s.screenshot(ctx, "ai-test-case-initial"); err != nil {
		s.log.Warn("initial screenshot failed", "error", err)
	} else {
		rep.Screenshots = append(rep.Screenshots, shot)
	}

	// Step 1: Analyze the page
	fmt.Printf("→ Analyzing page... ")
	analysis, err := crawler.Analyze(ctx, s.page)
	if err != nil {
		fmt.Println("failed")
		return fmt.Errorf("page analysis failed: %w", err)
	}
	rep.PageAnalysis = analysis
	fmt.Printf("done (%d elements, %d interactive)\n", len(analysis.Elements), len(analysis.InteractiveElements))

	// Step 2: Generate test cases
	fmt.Printf("→ Generating test cases... ")
	cases := testgen.Generate(analysis)
	fmt.Printf("done (%d test cases)\n", len(cases))

	if opts.useAI {
		var rejected []error
		cases, rejected = augment(ctx, s, opts, analysis, cases)
		for _, err := range rejected {
			rep.RejectedCases = append(rep.RejectedCases, err.Error())
		}
	}
	rep.TestCases = cases
	logCases(cases)

	// Step 3: Execute
	rep.ExecutionResults = []executor.Result{}
	if !opts.noExecute && len(cases) > 0 {
		fmt.Println("→ Executing test cases...")
		execOpts := executor.DefaultOptions()
		execOpts.ScreenshotDir = s.store.ScreenshotDir()
		execOpts.Logger = s.log
		execOpts.Progress = os.Stdout
		rep.ExecutionResults = executor.New(s.page, execOpts).Run(ctx, cases)
	}

	// Step 4: Write the test file
	if !opts.noCode && len(cases) > 0 {
		fmt.Printf("→ Writing test file... ")
		file, err := codegen.Generate(title, s.cfg.TargetURL, cases, time.Now())
		if err != nil {
			fmt.Println("failed")
			return err
		}
		path, err := file.Save(s.store.GeneratedDir())
		if err != nil {
			fmt.Println("failed")
			return err
		}
		rep.GeneratedTestCode = &report.GeneratedCode{
			FileName:    file.FileName,
			FilePath:    path,
			Description: file.Description,
		}
		fmt.Printf("done (%s)\n", path)
	}

	// Step 5: Replay
	if opts.replay != "" {
		if err := writeReplay(opts.replay, rep); err != nil {
			s.log.Warn("replay failed", "error", err)
		} else {
			rep.Replay = opts.replay
		}
	}

	path, err := s.store.Save(report.KindTestCases, rep)
	if err != nil {
		return err
	}

	passed := 0
	for _, r := range rep.ExecutionResults {
		if r.Success {
			passed++
		}
	}
	fmt.Printf("✓ %d test cases, %d passed, %d failed. Saved to %s\n",
		len(cases), passed, len(rep.ExecutionResults)-passed, path)
	return ctx.Err()
}

// augment merges AI suggestions into the heuristic cases. A provider
// failure is reported and the heuristic cases are used alone.
func augment(ctx context.Context, s *session, opts generateOptions, analysis *crawler.PageAnalysis, cases []testgen.TestCase) ([]testgen.TestCase, []error) {
	name := opts.provider
	if name == "" {
		name = os.Getenv("PAGESCOUT_DEFAULT_PROVIDER")
		if name == "" {
			name = "claude"
		}
	}

	fmt.Printf("→ Asking %s for more test cases... ", name)
	provider, err := ai.NewProvider(name, opts.model)
	if err != nil {
		fmt.Println("failed")
		s.log.Warn("AI provider init failed", "provider", name, "error", err)
		return cases, nil
	}
	extra, err := provider.GenerateTestCases(ctx, analysis, cases)
	if err != nil {
		fmt.Println("failed")
		s.log.Warn("AI generation failed", "provider", name, "error", err)
		return cases, nil
	}

	merged, rejected := testgen.Merge(cases, extra, testgen.SourceAI)
	fmt.Printf("done (%d added, %d rejected)\n", len(merged)-len(cases), len(rejected))
	for _, err := range rejected {
		s.log.Debug("AI test case rejected", "reason", err)
	}
	return merged, rejected
}

func writeReplay(out string, rep *report.TestCaseReport) error {
	paths := append([]string{}, rep.Screenshots...)
	for _, r := range rep.ExecutionResults {
		if r.ScreenshotPath != "" {
			paths = append(paths, r.ScreenshotPath)
		}
	}
	if len(paths) == 0 {
		return errors.New("no screenshots to replay")
	}

	fmt.Printf("→ Generating replay (%d screenshots)... ", len(paths))
	stats, err := gifgen.Replay(paths, out, gifgen.DefaultOptions())
	if err != nil {
		fmt.Println("failed")
		return err
	}
	fmt.Println("done")
	if len(stats.Skipped) > 0 {
		logVerbose("  skipped %d unreadable screenshots", len(stats.Skipped))
	}
	fmt.Printf("✓ Replay saved to %s (%.1f MB)\n", out, float64(stats.Size)/(1024*1024))
	return nil
}

// logCases prints the test case list
func logCases(cases []testgen.TestCase) {
	for i, tc := range cases {
		switch tc.Action {
		case testgen.ActionInput, testgen.ActionInputAndSearch:
			logVerbose("  [%d] %s → %s (value: %q) [%s/%s]", i+1, tc.Action, tc.ElementSelector, tc.InputValue, tc.Category, tc.Priority)
		default:
			logVerbose("  [%d] %s → %s [%s/%s]", i+1, tc.Action, tc.ElementSelector, tc.Category, tc.Priority)
		}
	}
}
