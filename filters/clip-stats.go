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

import (
	"errors"

	"github.com/biogo/hts/sam"

	"github.com/exascience/filter-clipped/aln"
)

// ErrZeroLengthSequence is returned when a clip fraction is requested
// for an alignment without sequence bases.
var ErrZeroLengthSequence = errors.New("clip fraction of a zero-length sequence")

// ClipInput holds the raw clip counts of one alignment.
type ClipInput struct {
	LeadingSoft, LeadingHard   int
	TrailingSoft, TrailingHard int
	SequenceLength             int
}

// NewClipInput extracts the clip counts of an alignment from its
// CIGAR, and its sequence length from SEQ.
func NewClipInput(record *sam.Record) ClipInput {
	var in ClipInput
	in.LeadingSoft, in.LeadingHard = aln.LeadingClips(record.Cigar)
	in.TrailingSoft, in.TrailingHard = aln.TrailingClips(record.Cigar)
	in.SequenceLength = record.Seq.Length
	return in
}

// ClipStat summarizes how many bases of an alignment are clipped.
//
// Left and Right take the larger of the soft and hard clip counts on
// each side, while TotalClipped is the sum of all four counts, so
// TotalClipped can be larger than Left+Right.
type ClipStat struct {
	Left, Right, TotalClipped int
}

// NewClipStat computes the ClipStat for the given clip counts.
func NewClipStat(in ClipInput) ClipStat {
	return ClipStat{
		Left:         max(in.LeadingSoft, in.LeadingHard),
		Right:        max(in.TrailingSoft, in.TrailingHard),
		TotalClipped: in.LeadingSoft + in.LeadingHard + in.TrailingSoft + in.TrailingHard,
	}
}

func fraction(nbases, seqLen int) (float64, error) {
	if seqLen == 0 {
		return 0, ErrZeroLengthSequence
	}
	return float64(nbases) / float64(seqLen), nil
}

// LeftFraction returns the fraction of 5' clipped bases relative to
// the sequence length.
func (stat ClipStat) LeftFraction(seqLen int) (float64, error) {
	return fraction(stat.Left, seqLen)
}

// RightFraction returns the fraction of 3' clipped bases relative to
// the sequence length.
func (stat ClipStat) RightFraction(seqLen int) (float64, error) {
	return fraction(stat.Right, seqLen)
}

// TotalFraction returns the fraction of all clipped bases relative to
// the sequence length.
func (stat ClipStat) TotalFraction(seqLen int) (float64, error) {
	return fraction(stat.TotalClipped, seqLen)
}
