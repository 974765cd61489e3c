package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/cartomix/mixcraft/internal/cues"
	"github.com/cartomix/mixcraft/internal/model"
	"github.com/cartomix/mixcraft/internal/pipeline"
	"github.com/cartomix/mixcraft/internal/scanner"
	"github.com/cartomix/mixcraft/internal/sequence"
	"github.com/cartomix/mixcraft/internal/storage"
	"github.com/cartomix/mixcraft/internal/transition"
	"github.com/cartomix/mixcraft/internal/workerpool"
)

func planCommand() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Sequence a session across the given tracks using the A* session planner",
		ArgsUsage: "<file-or-dir> [...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir"},
			&cli.StringFlag{Name: "config"},
			&cli.IntFlag{Name: "sample-rate", Value: 44100},
			&cli.StringFlag{Name: "start", Usage: "content hash of the track to start the session from (default: first discovered track)"},
			&cli.IntFlag{Name: "target", Value: 0, Usage: "number of tracks to include (default: all discovered tracks)"},
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
			go func() {
				for range scanProgress {
				}
			}()
			tracks, err := sc.Scan(ctx, cmd.Args().Slice(), scanProgress)
			if err != nil {
				return fmt.Errorf("scanning inputs: %w", err)
			}
			if len(tracks) == 0 {
				return fmt.Errorf("no supported audio files found")
			}

			p := pipeline.New(cfg, db, nil)
			pool := workerpool.New(0)
			descriptors := make([]*model.TrackDescriptor, len(tracks))

			errs := workerpool.Run(pool, tracks, func(ft scanner.FoundTrack) error {
				idx := indexOf(tracks, ft)
				if ft.Cached {
					td, err := db.GetDescriptor(ft.Hash)
					if err != nil {
						return err
					}
					descriptors[idx] = td
					return nil
				}
				td, err := p.AnalyzeFile(ctx, ft.Path, ft.Hash, nil)
				if err != nil {
					return err
				}
				descriptors[idx] = td
				return nil
			})
			// A track that fails analysis is excluded from planning
			// rather than aborting the command; the rest still proceed.
			for i, e := range errs {
				if e != nil {
					logger.Warn("excluding track from planning: analysis failed", "path", tracks[i].Path, "error", e)
					descriptors[i] = nil
				}
			}

			lib := &sequence.Library{
				Descriptors: make(map[string]*model.TrackDescriptor, len(descriptors)),
				Plans:       make(map[string]*model.MixPlanEntry, len(descriptors)),
				Memo:        transition.NewMemo(),
			}
			var allHashes []string
			for _, td := range descriptors {
				if td == nil {
					continue
				}
				lib.Descriptors[td.Hash] = td
				lib.Plans[td.Hash] = cues.Plan(td)
				allHashes = append(allHashes, td.Hash)
			}
			if len(allHashes) == 0 {
				return fmt.Errorf("no tracks were usable after analysis")
			}

			start := cmd.String("start")
			if start == "" {
				start = allHashes[0]
			}

			session, err := sequence.Plan(lib, start, allHashes, cmd.Int("target"))
			if err != nil {
				return fmt.Errorf("planning session: %w", err)
			}

			return json.NewEncoder(os.Stdout).Encode(session)
		},
	}
}

func indexOf(tracks []scanner.FoundTrack, target scanner.FoundTrack) int {
	for i, t := range tracks {
		if t.Path == target.Path {
			return i
		}
	}
	return -1
}
