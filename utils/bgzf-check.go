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

package utils

// Gzip and BGZF header layout, see RFC 1952 and SAMv1 section 4.1.
const (
	gzipID1     = 0x1f
	gzipID2     = 0x8b
	gzipDeflate = 8
	gzipFExtra  = 1 << 2

	// BGZFHeaderSize is the number of bytes IsBGZF needs to see.
	BGZFHeaderSize = 16
)

// IsGzip checks if the given bytes start with the gzip magic number.
func IsGzip(header []byte) bool {
	return len(header) >= 2 && header[0] == gzipID1 && header[1] == gzipID2
}

// IsBGZF checks if the given bytes start with a BGZF block header, that
// is a gzip member header with a BC extra subfield as its first extra
// field.
func IsBGZF(header []byte) bool {
	if len(header) < BGZFHeaderSize || !IsGzip(header) {
		return false
	}
	if header[2] != gzipDeflate || header[3]&gzipFExtra == 0 {
		return false
	}
	xlen := int(header[10]) | int(header[11])<<8
	slen := int(header[14]) | int(header[15])<<8
	return xlen >= 6 && header[12] == 'B' && header[13] == 'C' && slen == 2
}
