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

package aln

import (
	"github.com/biogo/hts/sam"
	"github.com/bits-and-blooms/bitset"
	"github.com/exascience/pargo/pipeline"
)

type (
	// An AlignmentFilter receives an alignment which it can modify. It
	// returns true if the alignment should be kept, and false if the
	// alignment should be removed.
	AlignmentFilter func(*sam.Record) bool

	// A Filter receives a Header and returns an AlignmentFilter or nil.
	// The header is the one that is written to the output, so a Filter
	// must not modify it.
	Filter func(*sam.Header) AlignmentFilter

	// PipelineStats counts the alignments that went into and came out
	// of a pipeline.
	PipelineStats struct {
		Read, Written int
	}

	// A recordBatch holds a batch of alignments in input order, with
	// the indexes of the alignments to keep.
	recordBatch struct {
		records []*sam.Record
		keep    *bitset.BitSet
	}
)

const (
	minBatchSize = 4096
	maxBatchSize = 262144
)

// ComposeFilters takes a Header and a slice of Filter functions, and
// successively calls these functions to generate the corresponding
// AlignmentFilter predicates. It then returns a pargo
// pipeline.Receiver that applies these AlignmentFilter predicates on
// the slices of alignments it receives, and marks the alignments for
// which all predicates return true. Predicates are applied in order,
// and stop at the first one that returns false.
func ComposeFilters(header *sam.Header, hdrFilters []Filter) pipeline.Receiver {
	var alnFilters []AlignmentFilter
	for _, f := range hdrFilters {
		if f != nil {
			if alnFilter := f(header); alnFilter != nil {
				alnFilters = append(alnFilters, alnFilter)
			}
		}
	}
	return func(_ int, data interface{}) interface{} {
		records := data.([]*sam.Record)
		keep := bitset.New(uint(len(records)))
	recordLoop:
		for i, record := range records {
			for _, alnFilter := range alnFilters {
				if !alnFilter(record) {
					continue recordLoop
				}
			}
			keep.Set(uint(i))
		}
		return &recordBatch{records: records, keep: keep}
	}
}

// writeBatches returns a pargo pipeline.Filter that writes the kept
// alignments of each batch to output, and counts them in stats. It
// must be used in a strictly ordered node.
func writeBatches(output *OutputFile, stats *PipelineStats) pipeline.Filter {
	return func(p *pipeline.Pipeline, _ pipeline.NodeKind, _ *int) (receiver pipeline.Receiver, _ pipeline.Finalizer) {
		receiver = func(_ int, data interface{}) interface{} {
			batch := data.(*recordBatch)
			stats.Read += len(batch.records)
			for i, ok := batch.keep.NextSet(0); ok; i, ok = batch.keep.NextSet(i + 1) {
				if err := output.Write(batch.records[i]); err != nil {
					p.SetErr(err)
					return data
				}
				stats.Written++
			}
			return data
		}
		return
	}
}

// RunPipeline reads all alignments from f, runs the given filters on
// them, and writes the alignments that are kept to output, in the
// same order as in the input. Filters may run in parallel on
// different batches of alignments. The first read, filter, or write
// error stops the pipeline and is returned.
func (f *InputFile) RunPipeline(output *OutputFile, hdrFilters []Filter) (stats PipelineStats, err error) {
	var p pipeline.Pipeline
	p.Source(f)
	p.SetVariableBatchSize(minBatchSize, maxBatchSize)
	p.Add(
		pipeline.LimitedPar(0, pipeline.Receive(ComposeFilters(f.Header(), hdrFilters))),
		pipeline.StrictOrd(writeBatches(output, &stats)),
	)
	p.Run()
	if err = p.Err(); err == nil {
		err = f.Err()
	}
	return stats, err
}
