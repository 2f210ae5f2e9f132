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

package filters

import "github.com/exascience/filter-clipped/aln"

// RunOutcome counts the alignments of a successful run of
// FilterClippedReads.
type RunOutcome struct {
	RecordsRead      int
	RecordsWritten   int
	RecordsRewritten int
}

// FilterClippedReads reads all alignments from input, decides for each
// of them whether it is kept, dropped, or marked as unmapped according
// to config, and writes the result to output in input order. The
// output must not be written to by anyone else while the run is in
// progress. Any read or write error aborts the run.
func FilterClippedReads(input *aln.InputFile, output *aln.OutputFile, config ClipConfig) (RunOutcome, error) {
	clipped, err := NewClippedReads(config)
	if err != nil {
		return RunOutcome{}, err
	}
	stats, err := input.RunPipeline(output, []aln.Filter{clipped.Filter})
	if err != nil {
		return RunOutcome{}, err
	}
	return RunOutcome{
		RecordsRead:      stats.Read,
		RecordsWritten:   stats.Written,
		RecordsRewritten: clipped.Rewritten(),
	}, nil
}
