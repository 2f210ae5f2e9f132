// Package aln reads and writes SAM/BAM files, and runs filters over
// their alignments.
//
// Alignments are represented by the record types of
// github.com/biogo/hts/sam. Modifications to alignments are
// expressed as filters: a Filter receives the header of the input
// and returns an AlignmentFilter that is called once per alignment.
// The alignments are processed in batches by a pargo pipeline, which
// may run filters on several batches in parallel, but always writes
// the alignments that are kept in their original order. See
// https://godoc.org/github.com/ExaScience/pargo/pipeline for details
// of pargo pipelines.
package aln
