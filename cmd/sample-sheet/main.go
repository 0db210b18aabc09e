package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/catan/internal/samplesheet"
	"github.com/okian/catan/pkg/logger"
)

const defaultTimeout = time.Minute

func main() {
	def := samplesheet.DefaultConfig()
	var (
		out     = flag.String("out", def.Out, "Output workbook path")
		sheet   = flag.String("sheet", def.Sheet, "Sheet name")
		seasons = flag.Int("seasons", def.Seasons, "Number of seasons")
		games   = flag.Int("games", def.Games, "Games per season (1..99)")
		first   = flag.Int("first-season", def.FirstSeason, "Number of the first season")
		seed    = flag.Int64("seed", def.Seed, "Random seed")
		blanks  = flag.Float64("blank-rate", def.BlankRate, "Probability of an empty production cell")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cfg := def
	cfg.Out = *out
	cfg.Sheet = *sheet
	cfg.Seasons = *seasons
	cfg.Games = *games
	cfg.FirstSeason = *first
	cfg.Seed = *seed
	cfg.BlankRate = *blanks

	if err := samplesheet.Write(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "sample workbook failed", logger.Error(err))
		os.Exit(1)
	}
}
