// filter-clipped: removing heavily clipped alignments from SAM/BAM files.
// Copyright (c) 2022 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/filter-clipped/blob/master/LICENSE.txt>.

package cmd

import (
	"errors"
	"log"
	"runtime"
	"strings"

	"github.com/fatih/color"
	cli "github.com/urfave/cli/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/exascience/filter-clipped/aln"
	"github.com/exascience/filter-clipped/filters"
	"github.com/exascience/filter-clipped/internal"
	"github.com/exascience/filter-clipped/utils"
)

func checkFractionFlag(name string) func(*cli.Context, float64) error {
	return func(_ *cli.Context, value float64) error {
		if err := filters.CheckFraction("--"+name, value); err != nil {
			return cli.Exit(err, 1)
		}
		return nil
	}
}

// FilterFlags are the command line flags of filter-clipped.
var FilterFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "in-bam",
		Aliases:  []string{"i"},
		Usage:    "input bam file path (\"-\" for stdin)",
		Required: true,
		Category: "Required",
	},
	&cli.StringFlag{
		Name:     "out-bam",
		Aliases:  []string{"o"},
		Usage:    "output bam file path (\"-\" for stdout)",
		Value:    aln.StdStream,
		Category: "Optional",
	},
	&cli.Float64Flag{
		Name:     "left-side",
		Aliases:  []string{"l"},
		Usage:    "maximum fraction of bases on the sequence being clipped from the left side (5' end)",
		Value:    0.1,
		Category: "Thresholds",
		Action:   checkFractionFlag("left-side"),
	},
	&cli.Float64Flag{
		Name:     "right-side",
		Aliases:  []string{"r"},
		Usage:    "maximum fraction of bases on the sequence being clipped from the right side (3' end)",
		Value:    0.1,
		Category: "Thresholds",
		Action:   checkFractionFlag("right-side"),
	},
	&cli.Float64Flag{
		Name:     "both-end",
		Aliases:  []string{"b"},
		Usage:    "maximum fraction of total bases on the sequence being clipped",
		Value:    0.1,
		Category: "Thresholds",
		Action:   checkFractionFlag("both-end"),
	},
	&cli.BoolFlag{
		Name:     "inverse",
		Usage:    "keep only the failed (high-clipped-fraction) alignments",
		Category: "Thresholds",
	},
	&cli.BoolFlag{
		Name:     "unalign",
		Aliases:  []string{"u"},
		Usage:    "mark failed alignments as unmapped instead of removing them, ignores --inverse",
		Category: "Thresholds",
	},
	&cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "YAML file with left_side, right_side, both_end, inverse, and unalign settings; command line flags take precedence",
		Category: "Optional",
	},
	&cli.StringFlag{
		Name:     "output-type",
		Usage:    "output format, sam or bam; by default determined by the output file extension",
		Category: "Optional",
		Action: func(_ *cli.Context, format string) error {
			if aln.CheckOutputFormat(strings.ToLower(format)) {
				return nil
			}
			return cli.Exit("Invalid output type '"+format+"', must be one of: sam, bam", 1)
		},
	},
	&cli.IntFlag{
		Name:     "nr-of-threads",
		Usage:    "number of worker threads, 0 for all available cores",
		Value:    1,
		Category: "Optional",
	},
	&cli.BoolFlag{
		Name:     "timed",
		Usage:    "measure the runtime",
		Category: "Optional",
	},
	&cli.StringFlag{
		Name:     "log-path",
		Usage:    "write log files to the specified directory",
		Category: "Optional",
	},
}

// NewApp returns the command line application of filter-clipped.
func NewApp() *cli.App {
	return &cli.App{
		Name:            utils.ProgramName,
		Usage:           utils.ProgramUsage,
		HideHelpCommand: true,
		Version:         utils.ProgramVersion,
		Flags:           FilterFlags,
		Action:          Filter,
	}
}

// Filter implements the filter-clipped command.
func Filter(c *cli.Context) error {
	config, err := readClipConfig(c)
	if err != nil {
		return err
	}

	input := c.String("in-bam")
	output := c.String("out-bam")
	outputType := strings.ToLower(c.String("output-type"))
	nrOfThreads := c.Int("nr-of-threads")
	timed := c.Bool("timed")

	if logPath := c.String("log-path"); logPath != "" {
		if err := setLogOutput(logPath); err != nil {
			return err
		}
		color.NoColor = true
	}

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("--in-bam", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("--out-bam", output) {
		sanityChecksFailed = true
	}

	if nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	if sanityChecksFailed {
		return errors.New("invalid command line parameters, see --help")
	}

	if config.Unalign && config.Inverse {
		log.Println("Warning: --inverse is ignored because --unalign is set.")
	}

	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
	}

	if input, err = internal.FullPathname(input); err != nil {
		return err
	}
	if output, err = internal.FullPathname(output); err != nil {
		return err
	}

	log.Println("Reading from alignment file:", input)
	log.Println("Writing to alignment file:", output)
	log.Printf("Thresholds: trailing clipped: %v, leading clipped: %v, total clipped: %v\n",
		config.RightSide, config.LeftSide, config.BothEnd)

	var outcome filters.RunOutcome
	err = timedRun(timed, "Filtering clipped alignments.", func() (err error) {
		outcome, err = runClipFilter(input, output, outputType, config)
		return err
	})
	if err != nil {
		return err
	}
	reportOutcome(outcome, config.Unalign)
	return nil
}

func runClipFilter(fileIn, fileOut, outputType string, config filters.ClipConfig) (outcome filters.RunOutcome, err error) {
	input, err := aln.Open(fileIn)
	if err != nil {
		return outcome, err
	}
	defer func() {
		nerr := input.Close()
		if err == nil {
			err = nerr
		}
	}()
	output, err := aln.Create(fileOut, outputType, input.Header())
	if err != nil {
		return outcome, err
	}
	defer func() {
		nerr := output.Close()
		if err == nil {
			err = nerr
		}
	}()
	return filters.FilterClippedReads(input, output, config)
}

func summarize(outcome filters.RunOutcome, unalign bool) string {
	p := message.NewPrinter(language.English)
	summary := p.Sprintf("Read %d alignments; Written %d alignments", outcome.RecordsRead, outcome.RecordsWritten)
	if unalign {
		summary += p.Sprintf("; Making %d to unaligned", outcome.RecordsRewritten)
	}
	return summary
}

func reportOutcome(outcome filters.RunOutcome, unalign bool) {
	log.Println(color.HiGreenString(summarize(outcome, unalign)))
}
