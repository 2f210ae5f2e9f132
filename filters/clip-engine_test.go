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
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/filter-clipped/aln"
)

func samInput(t *testing.T, records []*sam.Record) []byte {
	var buf bytes.Buffer
	output, err := aln.NewOutputFile(&buf, aln.SamFormat, testHeader)
	require.NoError(t, err)
	for _, record := range records {
		require.NoError(t, output.Write(record))
	}
	require.NoError(t, output.Close())
	return buf.Bytes()
}

func runFilter(t *testing.T, in []byte, config ClipConfig) (RunOutcome, []*sam.Record, []byte) {
	input, err := aln.NewInputFile(bytes.NewReader(in), aln.SamFormat)
	require.NoError(t, err)
	var out bytes.Buffer
	output, err := aln.NewOutputFile(&out, aln.SamFormat, input.Header())
	require.NoError(t, err)
	outcome, err := FilterClippedReads(input, output, config)
	require.NoError(t, err)
	require.NoError(t, output.Close())
	require.NoError(t, input.Close())

	result, err := aln.NewInputFile(bytes.NewReader(out.Bytes()), aln.SamFormat)
	require.NoError(t, err)
	var records []*sam.Record
	for {
		record, err := result.Read()
		if err != nil {
			break
		}
		records = append(records, record)
	}
	return outcome, records, out.Bytes()
}

func clippedRecords(t *testing.T, n int, cigar string) []*sam.Record {
	records := make([]*sam.Record, n)
	for i := range records {
		records[i] = newClipRecord(t, fmt.Sprintf("read%d", i), cigar)
	}
	return records
}

func TestFilterClippedReadsScenarios(t *testing.T) {
	in := samInput(t, clippedRecords(t, 10, "8M2S"))
	tests := []struct {
		name             string
		inverse, unalign bool
		want             RunOutcome
	}{
		{"remove", false, false, RunOutcome{10, 0, 0}},
		{"inverse", true, false, RunOutcome{10, 10, 0}},
		{"unalign", false, true, RunOutcome{10, 10, 10}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := DefaultClipConfig()
			config.Inverse, config.Unalign = test.inverse, test.unalign
			outcome, records, _ := runFilter(t, in, config)
			assert.Equal(t, test.want, outcome)
			require.Len(t, records, test.want.RecordsWritten)
			for i, record := range records {
				assert.Equal(t, fmt.Sprintf("read%d", i), record.Name)
				assert.Equal(t, test.unalign, record.Flags&sam.Unmapped != 0)
				if test.unalign {
					assert.Nil(t, record.Ref)
					assert.Equal(t, -1, record.Pos)
					assert.Equal(t, "8M2S", record.Cigar.String())
				}
			}
		})
	}
}

func mixedRecords(t *testing.T) []*sam.Record {
	cigars := []string{"20M", "8M2S", "2S18M", "1H19M", "5S10M5S", "100M", "3H2S15M", "19M1S", "10S", "4M1I5M"}
	records := make([]*sam.Record, 0, 3*len(cigars))
	for i := 0; i < 3; i++ {
		for j, cigar := range cigars {
			records = append(records, newClipRecord(t, fmt.Sprintf("read%d.%d", i, j), cigar))
		}
	}
	return records
}

func TestFilterClippedReadsInverseComplement(t *testing.T) {
	in := samInput(t, mixedRecords(t))
	config := DefaultClipConfig()
	kept, keptRecords, _ := runFilter(t, in, config)
	config.Inverse = true
	failed, failedRecords, _ := runFilter(t, in, config)

	assert.Equal(t, kept.RecordsRead, failed.RecordsRead)
	assert.Equal(t, kept.RecordsRead, kept.RecordsWritten+failed.RecordsWritten)
	assert.NotZero(t, kept.RecordsWritten)
	assert.NotZero(t, failed.RecordsWritten)

	names := make(map[string]bool)
	for _, record := range keptRecords {
		names[record.Name] = true
	}
	for _, record := range failedRecords {
		assert.False(t, names[record.Name], record.Name)
		names[record.Name] = true
	}
	assert.Len(t, names, kept.RecordsRead)
}

func TestFilterClippedReadsUnalignKeepsAll(t *testing.T) {
	records := mixedRecords(t)
	in := samInput(t, records)
	config := DefaultClipConfig()
	config.Unalign = true
	outcome, out, _ := runFilter(t, in, config)
	kept, _, _ := runFilter(t, in, DefaultClipConfig())

	assert.Equal(t, outcome.RecordsRead, outcome.RecordsWritten)
	assert.Equal(t, outcome.RecordsRead-kept.RecordsWritten, outcome.RecordsRewritten)
	require.Len(t, out, len(records))
	for i, record := range out {
		assert.Equal(t, records[i].Name, record.Name)
		assert.Equal(t, records[i].Seq.Expand(), record.Seq.Expand())
	}
}

func TestFilterClippedReadsIdempotent(t *testing.T) {
	in := samInput(t, mixedRecords(t))
	for _, config := range []ClipConfig{
		DefaultClipConfig(),
		{LeftSide: 0.2, RightSide: 0.3, BothEnd: 0.4},
	} {
		_, _, once := runFilter(t, in, config)
		_, _, twice := runFilter(t, once, config)
		assert.Equal(t, string(once), string(twice))
	}
}

func TestFilterClippedReadsZeroLength(t *testing.T) {
	records := clippedRecords(t, 2, "10M")
	records[1].Seq = sam.Seq{}
	records[1].Qual = nil
	records[1].Cigar = nil
	in := samInput(t, records)

	outcome, out, _ := runFilter(t, in, DefaultClipConfig())
	assert.Equal(t, RunOutcome{2, 1, 0}, outcome)
	require.Len(t, out, 1)
	assert.Equal(t, "read0", out[0].Name)
}

func TestFilterClippedReadsInvalidConfig(t *testing.T) {
	in := samInput(t, clippedRecords(t, 1, "10M"))
	input, err := aln.NewInputFile(bytes.NewReader(in), aln.SamFormat)
	require.NoError(t, err)
	output, err := aln.NewOutputFile(&bytes.Buffer{}, aln.SamFormat, input.Header())
	require.NoError(t, err)
	outcome, err := FilterClippedReads(input, output, ClipConfig{LeftSide: 2})
	assert.True(t, errors.Is(err, ErrInvalidThreshold))
	assert.Equal(t, RunOutcome{}, outcome)
}

func TestFilterClippedReadsReadError(t *testing.T) {
	in := append(samInput(t, clippedRecords(t, 3, "10M")), "broken\trecord\n"...)
	input, err := aln.NewInputFile(bytes.NewReader(in), aln.SamFormat)
	require.NoError(t, err)
	output, err := aln.NewOutputFile(&bytes.Buffer{}, aln.SamFormat, input.Header())
	require.NoError(t, err)
	_, err = FilterClippedReads(input, output, DefaultClipConfig())
	assert.True(t, errors.Is(err, aln.ErrReadRecord))
}
