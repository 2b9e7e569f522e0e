// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pileup computes per-base read coverage over sorted intervals.
//
// A Builder keeps one open region: the union of a maximal run of
// overlapping intervals.  Each interval either extends the region (it starts
// at or before the region's end, on the same chromosome) or closes it and
// opens a new one.  Memory use is proportional to the longest region, not to
// the chromosome.
package pileup

import (
	"github.com/grailbio/seqfiles/interval"
	"github.com/pkg/errors"
)

// PosType is the integer type used to represent genomic positions.
type PosType = interval.PosType

// ErrNegativeLength is returned (wrapped) for an interval whose start lies
// past its end.
var ErrNegativeLength = errors.New("interval start after end")

// Opts configures a Builder.
type Opts struct {
	// Strand restricts the pileup to reads on one strand.  StrandNone keeps
	// all reads.
	Strand interval.Strand
	// CheckSorted makes the builder fail with interval.ErrUnsorted on unsorted
	// input.
	CheckSorted bool
}

// DefaultOpts piles up every read.
var DefaultOpts = Opts{}

// Region is the coverage of a maximal run of overlapping intervals.
type Region struct {
	Chrom string
	Start PosType
	End   PosType
	// Depth[i] is the number of intervals covering Start+i.
	// len(Depth) == End-Start.
	Depth []uint32
}

// reset reseeds r with iv, reusing the depth buffer.
func (r *Region) reset(iv *interval.Interval) {
	r.Chrom = iv.Chrom
	r.Start = iv.Start
	r.End = iv.Start
	r.Depth = r.Depth[:0]
	r.add(iv)
}

// add piles iv onto r.  iv must satisfy r.Start <= iv.Start <= r.End.
func (r *Region) add(iv *interval.Interval) {
	if iv.End > r.End {
		n := int(iv.End - r.Start)
		if n <= cap(r.Depth) {
			old := len(r.Depth)
			r.Depth = r.Depth[:n]
			for i := old; i < n; i++ {
				r.Depth[i] = 0
			}
		} else {
			r.Depth = append(r.Depth, make([]uint32, n-len(r.Depth))...)
		}
		r.End = iv.End
	}
	d := r.Depth[iv.Start-r.Start : iv.End-r.Start]
	for i := range d {
		d[i]++
	}
}
