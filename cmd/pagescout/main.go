package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/v0xg/pagescout/internal/browser"
	"github.com/v0xg/pagescout/internal/config"
	"github.com/v0xg/pagescout/internal/logger"
	"github.com/v0xg/pagescout/internal/report"
)

var (
	outputDir string
	width     = 1280
	height    = 720
	headful   bool
	verbose   bool
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "pagescout",
		Short: "Explore a web page, find visual issues and generate test cases",
		Long: `pagescout opens the page named by EXPLORATION_TEST_TARGET_URL in a real
browser, looks for visual defects, clicks through its interactive elements
and turns what it finds into executable test cases.

Example:
  pagescout visual
  pagescout generate --ai --replay run.gif
  pagescout report testcases`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (default: $PAGESCOUT_OUTPUT_DIR or ./outputs)")
	rootCmd.PersistentFlags().BoolVar(&headful, "headful", false, "Show the browser window")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress")

	rootCmd.AddCommand(newVisualCmd(), newNavigateCmd(), newGenerateCmd(), newReportCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// session is what every browser-driving command starts from.
type session struct {
	cfg   config.Config
	log   *slog.Logger
	store *report.Store
	page  *browser.Session
}

// start loads and validates the configuration, then opens the target page.
// Configuration errors abort before a browser is launched.
func start(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	level := cfg.LogLevel
	if verbose {
		level = "DEBUG"
	}
	log := logger.New(level)

	fmt.Println("✓ Configuration loaded")
	fmt.Print(cfg.Summary())

	store := report.NewStore(cfg.OutputDir)
	if err := store.Prepare(); err != nil {
		return nil, err
	}

	fmt.Printf("→ Opening %s... ", cfg.TargetURL)
	page, err := browser.Launch(browser.Options{
		Width:    width,
		Height:   height,
		Headful:  headful,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		fmt.Println("failed")
		return nil, err
	}
	if err := page.Open(ctx, cfg.TargetURL, cfg.Timeout); err != nil {
		fmt.Println("failed")
		page.Close()
		return nil, fmt.Errorf("open %s: %w", cfg.TargetURL, err)
	}
	fmt.Println("done")

	return &session{cfg: cfg, log: log, store: store, page: page}, nil
}

func (s *session) Close() {
	s.page.Close()
}

// title is the current page title, or "unknown" when it cannot be read.
func (s *session) title(ctx context.Context) string {
	loc, err := s.page.Location(ctx)
	if err != nil {
		s.log.Warn("could not read page title", "error", err)
		return "unknown"
	}
	return loc.Title
}

// screenshot saves a full-page capture as screenshots/<name>-<ts>.png.
func (s *session) screenshot(ctx context.Context, name string) (string, error) {
	path := filepath.Join(s.store.ScreenshotDir(), fmt.Sprintf("%s-%s.png", name, report.Timestamp(time.Now())))
	if err := s.page.Screenshot(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}

func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}
