package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/cartomix/mixcraft/internal/config"
	"github.com/cartomix/mixcraft/internal/metadata"
	"github.com/cartomix/mixcraft/internal/pipeline"
	"github.com/cartomix/mixcraft/internal/progress"
	"github.com/cartomix/mixcraft/internal/scanner"
	"github.com/cartomix/mixcraft/internal/storage"
	"github.com/cartomix/mixcraft/internal/workerpool"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze one or more audio files or directories, printing a descriptor per track",
		ArgsUsage: "<file-or-dir> [...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Usage: "data directory for the SQLite descriptor cache"},
			&cli.StringFlag{Name: "config", Usage: "path to a JSON config file overlaid onto flag defaults"},
			&cli.IntFlag{Name: "sample-rate", Value: 44100, Usage: "target sample rate analysis is resampled to"},
			&cli.BoolFlag{Name: "normalize", Usage: "apply loudness normalization before analysis"},
			&cli.Float64Flag{Name: "normalize-target-lufs", Value: -14.0},
			&cli.BoolFlag{Name: "disable-bpm", Usage: "skip rhythm/BPM extraction"},
			&cli.BoolFlag{Name: "disable-tonal", Usage: "skip tonal/key extraction"},
			&cli.BoolFlag{Name: "disable-cues", Usage: "skip cue-point generation"},
			&cli.IntFlag{Name: "concurrency", Value: 0, Usage: "number of tracks analyzed in parallel (default: NumCPU)"},
			&cli.BoolFlag{Name: "force", Usage: "re-analyze even if a cached descriptor already exists"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return fmt.Errorf("expected at least one file or directory argument")
			}

			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			db, err := storage.Open(cfg.DataDir, logger)
			if err != nil {
				return fmt.Errorf("opening storage: %w", err)
			}
			defer db.Close()

			sc := scanner.New(db, logger)
			scanProgress := make(chan scanner.Progress, 64)
			var tracks []scanner.FoundTrack
			go func() {
				for p := range scanProgress {
					if p.Status == "error" {
						logger.Warn("scan error", "path", p.Path, "error", p.Error)
					}
				}
			}()
			tracks, err = sc.Scan(ctx, cmd.Args().Slice(), scanProgress)
			if err != nil {
				return fmt.Errorf("scanning inputs: %w", err)
			}

			p := pipeline.New(cfg, db, nil)
			pool := workerpool.New(cmd.Int("concurrency"))

			encoder := json.NewEncoder(os.Stdout)
			force := cmd.Bool("force")

			errs := workerpool.Run(pool, tracks, func(ft scanner.FoundTrack) error {
				if ft.Cached && !force {
					logger.Info("skipping cached track", "path", ft.Path, "hash", ft.Hash)
					return nil
				}

				events := make(chan progress.Event, 16)
				done := make(chan struct{})
				go func() {
					defer close(done)
					for e := range events {
						logger.Debug("progress", "job_id", e.JobID, "phase", e.Phase, "percent", e.Progress, "message", e.Message)
					}
				}()
				reporter := progress.NewReporter(ft.Hash, events)

				td, err := p.AnalyzeFile(ctx, ft.Path, ft.Hash, reporter)
				close(events)
				<-done
				if err != nil {
					logger.Error("analysis failed", "path", ft.Path, "error", err)
					return err
				}

				info := metadata.Read(ft.Path)
				return encoder.Encode(map[string]any{
					"path":       ft.Path,
					"title":      info.Title,
					"artist":     info.Artist,
					"descriptor": td,
				})
			})

			var failed int
			for _, e := range errs {
				if e != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d tracks failed analysis", failed, len(tracks))
			}
			return nil
		},
	}
}

func configFromFlags(cmd *cli.Command) (*config.Config, error) {
	var args []string
	if v := cmd.String("data-dir"); v != "" {
		args = append(args, "-data-dir="+v)
	}
	if v := cmd.String("config"); v != "" {
		args = append(args, "-config="+v)
	}
	args = append(args,
		fmt.Sprintf("-sample-rate=%d", cmd.Int("sample-rate")),
		fmt.Sprintf("-normalize-target-lufs=%v", cmd.Float64("normalize-target-lufs")),
	)
	if cmd.Bool("normalize") {
		args = append(args, "-normalize")
	}
	if cmd.Bool("disable-bpm") {
		args = append(args, "-disable-bpm")
	}
	if cmd.Bool("disable-tonal") {
		args = append(args, "-disable-tonal")
	}
	if cmd.Bool("disable-cues") {
		args = append(args, "-disable-cues")
	}
	return config.Parse(args)
}
