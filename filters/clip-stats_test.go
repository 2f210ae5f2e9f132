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
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClipStat(t *testing.T) {
	tests := []struct {
		name  string
		input ClipInput
		want  ClipStat
	}{
		{"unclipped", ClipInput{SequenceLength: 10}, ClipStat{}},
		{"soft only", ClipInput{LeadingSoft: 2, TrailingSoft: 3, SequenceLength: 10}, ClipStat{2, 3, 5}},
		{"max per side", ClipInput{LeadingSoft: 3, LeadingHard: 5, SequenceLength: 20}, ClipStat{5, 0, 8}},
		{"all four", ClipInput{1, 2, 3, 4, 20}, ClipStat{2, 4, 10}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stat := NewClipStat(test.input)
			assert.Equal(t, test.want, stat)
			assert.GreaterOrEqual(t, stat.TotalClipped, stat.Left)
			assert.GreaterOrEqual(t, stat.TotalClipped, stat.Right)
		})
	}
}

func TestClipFractions(t *testing.T) {
	tests := []struct {
		name               string
		input              ClipInput
		left, right, total float64
	}{
		{"both sides", ClipInput{LeadingSoft: 2, TrailingHard: 2, SequenceLength: 10}, 0.2, 0.2, 0.4},
		{"uneven", ClipInput{LeadingSoft: 1, TrailingHard: 2, SequenceLength: 10}, 0.1, 0.2, 0.3},
		{"unclipped", ClipInput{SequenceLength: 150}, 0, 0, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stat := NewClipStat(test.input)
			left, err := stat.LeftFraction(test.input.SequenceLength)
			require.NoError(t, err)
			right, err := stat.RightFraction(test.input.SequenceLength)
			require.NoError(t, err)
			total, err := stat.TotalFraction(test.input.SequenceLength)
			require.NoError(t, err)
			assert.InDelta(t, test.left, left, 1e-9)
			assert.InDelta(t, test.right, right, 1e-9)
			assert.InDelta(t, test.total, total, 1e-9)
		})
	}
}

func TestZeroLengthFractions(t *testing.T) {
	stat := NewClipStat(ClipInput{LeadingHard: 5})
	_, err := stat.LeftFraction(0)
	assert.True(t, errors.Is(err, ErrZeroLengthSequence))
	_, err = stat.RightFraction(0)
	assert.True(t, errors.Is(err, ErrZeroLengthSequence))
	_, err = stat.TotalFraction(0)
	assert.True(t, errors.Is(err, ErrZeroLengthSequence))
}

func TestNewClipInput(t *testing.T) {
	record := newClipRecord(t, "r1", "5H3S10M2S4H")
	assert.Equal(t, ClipInput{
		LeadingHard:    5,
		TrailingHard:   4,
		SequenceLength: 15,
	}, NewClipInput(record))

	unclipped := newClipRecord(t, "r2", "12M")
	assert.Equal(t, ClipInput{SequenceLength: 12}, NewClipInput(unclipped))
}

func TestNewClipInputWithoutSequence(t *testing.T) {
	record := newClipRecord(t, "r1", "3S7M")
	record.Seq = sam.Seq{}
	record.Qual = nil
	in := NewClipInput(record)
	assert.Equal(t, 0, in.SequenceLength)
	assert.False(t, DefaultClipConfig().Passes(NewClipStat(in), in.SequenceLength))
}
