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

// filter-clipped removes alignments with a high fraction of soft- or
// hard-clipped bases from .sam/.bam files. Some aligners use loose
// scoring and report alignments where a large part of the read is
// clipped; filter-clipped gates these alignments by the number of
// clipped bases relative to the read sequence length, on the 5' end,
// the 3' end, and both ends together. Failing alignments are removed,
// or, with --unalign, marked as unmapped. With --inverse, only the
// failing alignments are kept.
//
// Please see https://github.com/exascience/filter-clipped for a
// documentation of the tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/filter-clipped/cmd"
)

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if err := cmd.NewApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
