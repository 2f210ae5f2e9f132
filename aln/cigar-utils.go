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

import "github.com/biogo/hts/sam"

func clipOf(op sam.CigarOp) (soft, hard int) {
	switch op.Type() {
	case sam.CigarSoftClipped:
		return op.Len(), 0
	case sam.CigarHardClipped:
		return 0, op.Len()
	default:
		return 0, 0
	}
}

// LeadingClips returns the number of soft-clipped and hard-clipped
// bases at the start of the given CIGAR. Only the first operation is
// considered, so at most one of soft and hard is non-zero.
func LeadingClips(cigar sam.Cigar) (soft, hard int) {
	if len(cigar) == 0 {
		return 0, 0
	}
	return clipOf(cigar[0])
}

// TrailingClips returns the number of soft-clipped and hard-clipped
// bases at the end of the given CIGAR. Only the last operation is
// considered.
func TrailingClips(cigar sam.Cigar) (soft, hard int) {
	if len(cigar) == 0 {
		return 0, 0
	}
	return clipOf(cigar[len(cigar)-1])
}
