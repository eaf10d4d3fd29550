package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/orchestrator"
	"github.com/standardbeagle/valknut-go/internal/vlog"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:                   "valknut",
		Usage:                  "static analysis and refactoring-opportunity scoring for AI-assisted codebases",
		Version:                version,
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			analyzeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "valknut:", err)
		os.Exit(1)
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "run a full analysis over a directory",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Config file path (KDL)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: json", Value: "json"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress informational logging"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "quality-gate", Usage: "Exit non-zero if the quality gate fails"},
			&cli.IntFlag{Name: "batch-size", Usage: "Files processed concurrently per stage", Value: 0},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	root := c.Args().First()
	if root == "" {
		root = "."
	}

	vlog.SetQuiet(c.Bool("quiet"))
	if c.Bool("verbose") {
		vlog.SetQuiet(false)
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.Bool("quality-gate") {
		cfg.QualityGate.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := orchestrator.Run(ctx, orchestrator.Options{
		Root:      root,
		Config:    cfg,
		BatchSize: c.Int("batch-size"),
	})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if c.Bool("quality-gate") && result.QualityGate != nil && !result.QualityGate.Passed {
		return cli.Exit("quality gate failed", 1)
	}
	return nil
}
