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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/klauspost/pgzip"

	"github.com/exascience/filter-clipped/utils"
)

// Errors reported when opening, reading, or writing alignment files.
var (
	ErrOpenInput    = errors.New("cannot open alignment input")
	ErrCreateOutput = errors.New("cannot create alignment output")
	ErrReadRecord   = errors.New("cannot read alignment record")
	ErrWriteRecord  = errors.New("cannot write alignment record")
)

// Alignment file formats.
const (
	SamFormat   = "sam"
	BamFormat   = "bam"
	SamGzFormat = "sam.gz"
)

// StdStream is the file name that denotes standard input for Open,
// and standard output for Create.
const StdStream = "-"

// closeAll closes all closers in order and returns the first error.
func closeAll(closers []io.Closer) (err error) {
	for _, c := range closers {
		if nerr := c.Close(); err == nil {
			err = nerr
		}
	}
	return err
}

type (
	// alignmentReader is a common interface for reading both SAM and BAM files.
	alignmentReader interface {
		Header() *sam.Header
		Read() (*sam.Record, error)
	}

	// InputFile represents a SAM or BAM file for input.
	InputFile struct {
		reader  alignmentReader
		closers []io.Closer
		data    []*sam.Record
		err     error
	}
)

// NewInputFile reads alignments in the given format from r.
func NewInputFile(r io.Reader, format string) (*InputFile, error) {
	switch format {
	case BamFormat:
		br, err := bam.NewReader(r, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOpenInput, err)
		}
		return &InputFile{reader: br, closers: []io.Closer{br}}, nil
	case SamGzFormat:
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOpenInput, err)
		}
		sr, err := sam.NewReader(gz)
		if err != nil {
			_ = gz.Close()
			return nil, fmt.Errorf("%w: %v", ErrOpenInput, err)
		}
		return &InputFile{reader: sr, closers: []io.Closer{gz}}, nil
	case SamFormat:
		sr, err := sam.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOpenInput, err)
		}
		return &InputFile{reader: sr}, nil
	default:
		return nil, fmt.Errorf("%w: unknown input format %v", ErrOpenInput, format)
	}
}

// InputFormat determines the format of an input file from its name
// and its first bytes. BGZF-compressed input is BAM, unless the name
// ends in .gz, in which case it is compressed SAM. Other
// gzip-compressed input is always compressed SAM.
func InputFormat(name string, header []byte) string {
	switch {
	case !utils.IsGzip(header):
		return SamFormat
	case strings.HasSuffix(name, ".gz") || !utils.IsBGZF(header):
		return SamGzFormat
	default:
		return BamFormat
	}
}

// Open a SAM or BAM file for input.
//
// If the name is "-", then the input is read from os.Stdin.
func Open(name string) (*InputFile, error) {
	file := os.Stdin
	if name != StdStream {
		var err error
		if file, err = os.Open(name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOpenInput, err)
		}
	}
	buf := bufio.NewReader(file)
	header, _ := buf.Peek(utils.BGZFHeaderSize)
	f, err := NewInputFile(buf, InputFormat(name, header))
	if err != nil {
		if file != os.Stdin {
			_ = file.Close()
		}
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	if file != os.Stdin {
		f.closers = append(f.closers, file)
	}
	return f, nil
}

// Close closes the SAM/BAM input file.
func (f *InputFile) Close() error {
	return closeAll(f.closers)
}

// Header returns the header of the SAM/BAM input file.
func (f *InputFile) Header() *sam.Header {
	return f.reader.Header()
}

// Read returns the next alignment, or io.EOF at the end of the input.
func (f *InputFile) Read() (*sam.Record, error) {
	record, err := f.reader.Read()
	if err == io.EOF {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadRecord, err)
	}
	return record, nil
}

// Err implements the method of the pipeline.Source interface.
func (f *InputFile) Err() error {
	return f.err
}

// Prepare implements the method of the pipeline.Source interface.
func (*InputFile) Prepare(_ context.Context) (size int) {
	return -1
}

// Fetch implements the method of the pipeline.Source interface.
func (f *InputFile) Fetch(size int) (fetched int) {
	if f.err != nil {
		f.data = nil
		return 0
	}
	records := make([]*sam.Record, 0, size)
	for fetched = 0; fetched < size; fetched++ {
		record, err := f.Read()
		if err != nil {
			if err != io.EOF {
				f.err = err
			}
			break
		}
		records = append(records, record)
	}
	f.data = records
	return fetched
}

// Data implements the method of the pipeline.Source interface.
func (f *InputFile) Data() interface{} {
	return f.data
}

type (
	// alignmentWriter is a common interface for writing both SAM and BAM files.
	alignmentWriter interface {
		Write(*sam.Record) error
	}

	// OutputFile represents a SAM or BAM file for output.
	OutputFile struct {
		writer  alignmentWriter
		closers []io.Closer
	}

	flusher struct{ *bufio.Writer }
)

func (f flusher) Close() error {
	return f.Flush()
}

// NewOutputFile writes alignments in the given format to w, starting
// with the given header.
func NewOutputFile(w io.Writer, format string, header *sam.Header) (*OutputFile, error) {
	switch format {
	case BamFormat:
		bw, err := bam.NewWriter(w, header, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreateOutput, err)
		}
		return &OutputFile{writer: bw, closers: []io.Closer{bw}}, nil
	case SamFormat:
		buf := bufio.NewWriter(w)
		sw, err := sam.NewWriter(buf, header, sam.FlagDecimal)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreateOutput, err)
		}
		return &OutputFile{writer: sw, closers: []io.Closer{flusher{buf}}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %v", ErrCreateOutput, format)
	}
}

// OutputFormat determines the format of an output file from its
// name. If the filename extension is not .sam, then .bam is always
// assumed.
func OutputFormat(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".sam") {
		return SamFormat
	}
	return BamFormat
}

// CheckOutputFormat reports whether format is a valid value for
// Create. The empty string selects the format by filename extension.
func CheckOutputFormat(format string) bool {
	switch format {
	case "", SamFormat, BamFormat:
		return true
	default:
		return false
	}
}

// Create a SAM or BAM file for output, and write the given header to
// it. If format is empty, it is determined by OutputFormat.
//
// If the name is "-", then the output is written to os.Stdout.
func Create(name, format string, header *sam.Header) (*OutputFile, error) {
	if format == "" {
		format = OutputFormat(name)
	}
	file := os.Stdout
	if name != StdStream {
		if err := os.MkdirAll(filepath.Dir(name), 0700); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreateOutput, err)
		}
		var err error
		if file, err = os.Create(name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreateOutput, err)
		}
	}
	f, err := NewOutputFile(file, format, header)
	if err != nil {
		if file != os.Stdout {
			_ = file.Close()
		}
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	if file != os.Stdout {
		f.closers = append(f.closers, file)
	}
	return f, nil
}

// Write writes one alignment to the SAM/BAM output file.
func (f *OutputFile) Write(record *sam.Record) error {
	if err := f.writer.Write(record); err != nil {
		return fmt.Errorf("%w %v: %v", ErrWriteRecord, record.Name, err)
	}
	return nil
}

// Close flushes and closes a SAM or BAM output file.
func (f *OutputFile) Close() error {
	if err := closeAll(f.closers); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteRecord, err)
	}
	return nil
}
