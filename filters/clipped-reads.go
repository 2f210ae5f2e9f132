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
	"fmt"
	"math"
	"sync/atomic"

	"github.com/biogo/hts/sam"

	"github.com/exascience/filter-clipped/aln"
)

// ErrInvalidThreshold is returned for clip thresholds outside [0,1].
var ErrInvalidThreshold = errors.New("clip threshold is not within 0 and 1")

// An Action tells what happens to an alignment after its clip
// fractions are checked against the thresholds.
type Action int

const (
	// Keep writes the alignment unchanged.
	Keep Action = iota
	// Drop removes the alignment from the output.
	Drop
	// RewriteUnaligned marks the alignment as unmapped, and writes it.
	RewriteUnaligned
)

func (action Action) String() string {
	switch action {
	case Keep:
		return "keep"
	case Drop:
		return "drop"
	case RewriteUnaligned:
		return "unalign"
	default:
		return fmt.Sprintf("Action(%d)", int(action))
	}
}

// ClipConfig holds the thresholds and modes of the clipped reads
// filter.
type ClipConfig struct {
	// Maximum fraction of bases clipped from the 5' end (inclusive).
	LeftSide float64 `yaml:"left_side"`
	// Maximum fraction of bases clipped from the 3' end (inclusive).
	RightSide float64 `yaml:"right_side"`
	// Maximum fraction of all clipped bases (exclusive).
	BothEnd float64 `yaml:"both_end"`
	// Keep only the alignments that fail the thresholds.
	Inverse bool `yaml:"inverse"`
	// Mark failing alignments as unmapped instead of removing them.
	// Overrides Inverse.
	Unalign bool `yaml:"unalign"`
}

// DefaultClipConfig returns a ClipConfig with all thresholds at 0.1.
func DefaultClipConfig() ClipConfig {
	return ClipConfig{LeftSide: 0.1, RightSide: 0.1, BothEnd: 0.1}
}

// CheckFraction checks that a threshold is between 0 and 1, both
// inclusive.
func CheckFraction(name string, value float64) error {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return fmt.Errorf("%w: %v = %v", ErrInvalidThreshold, name, value)
	}
	return nil
}

// Validate checks all thresholds of config.
func (config ClipConfig) Validate() error {
	if err := CheckFraction("left-side", config.LeftSide); err != nil {
		return err
	}
	if err := CheckFraction("right-side", config.RightSide); err != nil {
		return err
	}
	return CheckFraction("both-end", config.BothEnd)
}

// Passes reports whether an alignment with the given clip statistics
// and sequence length is within the thresholds. The total fraction
// must be strictly below BothEnd, while the single-side fractions may
// be equal to LeftSide and RightSide. Alignments without sequence
// bases never pass.
func (config ClipConfig) Passes(stat ClipStat, seqLen int) bool {
	total, err := stat.TotalFraction(seqLen)
	if err != nil {
		return false
	}
	left, err := stat.LeftFraction(seqLen)
	if err != nil {
		return false
	}
	right, err := stat.RightFraction(seqLen)
	if err != nil {
		return false
	}
	return total < config.BothEnd && left <= config.LeftSide && right <= config.RightSide
}

// Decide returns the Action for an alignment that passes or fails
// the thresholds.
func (config ClipConfig) Decide(passes bool) Action {
	switch {
	case config.Unalign:
		if passes {
			return Keep
		}
		return RewriteUnaligned
	case config.Inverse:
		if passes {
			return Drop
		}
		return Keep
	default:
		if passes {
			return Keep
		}
		return Drop
	}
}

// Unalign marks an alignment as unmapped: it sets the unmapped flag,
// clears the reverse strand and proper pair flags, and removes the
// reference and position. Sequence, qualities, and tags are left
// unchanged.
func Unalign(record *sam.Record) {
	record.Flags |= sam.Unmapped
	record.Flags &^= sam.Reverse | sam.ProperPair
	record.Ref = nil
	record.Pos = -1
}

// ClippedReads is a filter that removes or unaligns alignments with
// too many clipped bases. It counts the alignments it rewrites.
type ClippedReads struct {
	config    ClipConfig
	rewritten int64
}

// NewClippedReads returns a ClippedReads filter for a validated config.
func NewClippedReads(config ClipConfig) (*ClippedReads, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ClippedReads{config: config}, nil
}

// Filter implements aln.Filter.
func (c *ClippedReads) Filter(_ *sam.Header) aln.AlignmentFilter {
	return func(record *sam.Record) bool {
		in := NewClipInput(record)
		switch c.config.Decide(c.config.Passes(NewClipStat(in), in.SequenceLength)) {
		case Keep:
			return true
		case RewriteUnaligned:
			Unalign(record)
			atomic.AddInt64(&c.rewritten, 1)
			return true
		default:
			return false
		}
	}
}

// Rewritten returns the number of alignments marked as unmapped so far.
func (c *ClippedReads) Rewritten() int {
	return int(atomic.LoadInt64(&c.rewritten))
}
