// Copyright 2025 Atom
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/nitin-atom/finetuning-customer-support/ai"
	"github.com/nitin-atom/finetuning-customer-support/ai/openai"
	"github.com/nitin-atom/finetuning-customer-support/config"
	"github.com/nitin-atom/finetuning-customer-support/orchestrate"
	"github.com/nitin-atom/finetuning-customer-support/pipeline"
	"github.com/nitin-atom/finetuning-customer-support/storage"
	"github.com/nitin-atom/finetuning-customer-support/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "qagen",
		Usage: "Generate a Q&A fine-tuning dataset from helpdesk articles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Load scraped articles into the local store",
				Action:    ingestCommand,
				ArgsUsage: "[articles.json]",
			},
			{
				Name:   "questions",
				Usage:  "Generate candidate questions for every article",
				Action: questionsCommand,
				Flags:  generationFlags(),
			},
			{
				Name:   "answers",
				Usage:  "Generate answers for every unanswered question",
				Action: answersCommand,
				Flags:  generationFlags(),
			},
			{
				Name:   "format",
				Usage:  "Write fine-tuning JSONL and dataset metadata",
				Action: formatCommand,
			},
			{
				Name:   "check",
				Usage:  "Validate, deduplicate, and write the final dataset",
				Action: checkCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func generationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Process at most N items (0 means all)",
		},
		&cli.BoolFlag{
			Name:  "resume",
			Usage: "Resume from the stage checkpoint instead of starting fresh",
		},
		&cli.BoolFlag{
			Name:  "sync",
			Usage: "Call the completion API directly instead of submitting batches",
		},
	}
}

func ingestCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	path := cfg.Paths.RawArticles
	if c.Args().Len() > 0 {
		path = c.Args().First()
	}

	p, cleanup, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := p.Ingest(context.Background(), path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	pipeline.PrintIngestSummary(os.Stdout, summary)
	return nil
}

func questionsCommand(c *cli.Context) error {
	return runGeneration(c, func(ctx context.Context, p *pipeline.Pipeline, opts pipeline.RunOptions) (*orchestrate.Summary, error) {
		return p.RunQuestions(ctx, opts)
	})
}

func answersCommand(c *cli.Context) error {
	return runGeneration(c, func(ctx context.Context, p *pipeline.Pipeline, opts pipeline.RunOptions) (*orchestrate.Summary, error) {
		return p.RunAnswers(ctx, opts)
	})
}

func runGeneration(c *cli.Context, stage func(context.Context, *pipeline.Pipeline, pipeline.RunOptions) (*orchestrate.Summary, error)) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	p, cleanup, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := pipeline.RunOptions{
		Limit:  c.Int("limit"),
		Resume: c.Bool("resume"),
		Sync:   c.Bool("sync"),
	}

	summary, err := stage(context.Background(), p, opts)
	if err != nil {
		if errors.Is(err, storage.ErrCheckpointWrite) {
			return cli.Exit(fmt.Sprintf("fatal: %v", err), 2)
		}
		return err
	}
	pipeline.PrintRunSummary(os.Stdout, summary)

	if err := summary.CeilingError(); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func formatCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	p, cleanup, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := p.Format(context.Background())
	if err != nil {
		return fmt.Errorf("format failed: %w", err)
	}
	pipeline.PrintFormatSummary(os.Stdout, summary)
	return nil
}

func checkCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	p, cleanup, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := p.Check(context.Background())
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	pipeline.PrintQualityReport(os.Stdout, report)

	if !report.Passed() {
		return cli.Exit("dataset did not pass validation", 1)
	}
	return nil
}

// buildPipeline opens the database, constructs the repositories and AI
// provider, and wires them into a Pipeline. The returned cleanup closes
// everything in reverse order.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	backend, err := badger.OpenBackend(cfg.Storage.DataDir, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	articles, err := badger.NewArticleRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create article repository: %w", err)
	}
	pairs, err := badger.NewQAPairRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create qa pair repository: %w", err)
	}
	items, err := badger.NewWorkItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create work item repository: %w", err)
	}
	checkpoints := badger.NewCheckpointRepository(backend)

	aiConfig := ai.NewConfig(
		ai.WithHost(cfg.OpenAI.Host),
		ai.WithModel(cfg.OpenAI.Model),
		ai.WithAPIKey(cfg.APIKey()),
	)
	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	p := pipeline.New(articles, pairs, items, checkpoints, provider, cfg, os.Stderr)
	cleanup := func() {
		if err := provider.Close(); err != nil {
			slog.Warn("failed to close AI provider", "err", err)
		}
		if err := backend.Close(); err != nil {
			slog.Warn("failed to close database", "err", err)
		}
	}
	return p, cleanup, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
