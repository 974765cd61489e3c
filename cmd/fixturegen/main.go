package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/cartomix/mixcraft/internal/fixtures"
)

func main() {
	app := &cli.Command{
		Name:  "fixturegen",
		Usage: "Generate synthetic WAV fixtures for exercising the analysis pipeline",
		Commands: []*cli.Command{
			generateCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Write fixture WAV files and a manifest.json into an output directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output-dir", Value: "./testdata/audio"},
			&cli.IntFlag{Name: "sample-rate", Value: 48000},
			&cli.IntFlag{Name: "seed", Value: 1},
			&cli.StringFlag{Name: "bpm-ladder", Value: "90,110,120,126,128,140,174", Usage: "comma-separated BPM values for click-track fixtures"},
			&cli.BoolFlag{Name: "swing"},
			&cli.Float64Flag{Name: "swing-ratio", Value: 0.6},
			&cli.BoolFlag{Name: "ramp"},
			&cli.Float64Flag{Name: "ramp-start-bpm", Value: 120},
			&cli.Float64Flag{Name: "ramp-end-bpm", Value: 140},
			&cli.BoolFlag{Name: "chord"},
			&cli.StringFlag{Name: "chord-key", Value: "8A"},
			&cli.BoolFlag{Name: "phrase"},
			&cli.Float64Flag{Name: "phrase-bpm", Value: 128},
			&cli.BoolFlag{Name: "vocal-phrase"},
			&cli.Float64Flag{Name: "vocal-phrase-bpm", Value: 124},
			&cli.BoolFlag{Name: "harmonic-set"},
			&cli.StringFlag{Name: "harmonic-set-keys", Value: "8A,9A,7A,8B"},
			&cli.BoolFlag{Name: "club-noise"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg := fixtures.Config{
				OutputDir:          cmd.String("output-dir"),
				SampleRate:         cmd.Int("sample-rate"),
				Seed:               int64(cmd.Int("seed")),
				BPMLadder:          parseFloats(cmd.String("bpm-ladder")),
				SwingRatio:         cmd.Float64("swing-ratio"),
				IncludeSwing:       cmd.Bool("swing"),
				IncludeRamp:        cmd.Bool("ramp"),
				RampStartBPM:       cmd.Float64("ramp-start-bpm"),
				RampEndBPM:         cmd.Float64("ramp-end-bpm"),
				IncludeChord:       cmd.Bool("chord"),
				ChordKey:           cmd.String("chord-key"),
				IncludePhrase:      cmd.Bool("phrase"),
				PhraseBPM:          cmd.Float64("phrase-bpm"),
				IncludeVocalPhrase: cmd.Bool("vocal-phrase"),
				VocalPhraseBPM:     cmd.Float64("vocal-phrase-bpm"),
				IncludeHarmonicSet: cmd.Bool("harmonic-set"),
				HarmonicSetKeys:    strings.Split(cmd.String("harmonic-set-keys"), ","),
				IncludeClubNoise:   cmd.Bool("club-noise"),
			}

			manifest, err := fixtures.Generate(cfg)
			if err != nil {
				return fmt.Errorf("generating fixtures: %w", err)
			}

			return json.NewEncoder(os.Stdout).Encode(manifest)
		},
	}
}

func parseFloats(csv string) []float64 {
	parts := strings.Split(csv, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		var v float64
		if _, err := fmt.Sscanf(p, "%g", &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}
