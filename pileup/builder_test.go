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

package pileup_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/seqfiles/pileup"
	"github.com/grailbio/testutil/expect"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func iv(chrom string, start, end pileup.PosType) interval.Interval {
	return interval.Interval{Chrom: chrom, Start: start, End: end}
}

// regions runs a Builder over ivs and returns deep copies of its regions.
func regions(t *testing.T, ivs []interval.Interval, opts pileup.Opts) []pileup.Region {
	b := pileup.NewBuilder(interval.NewSliceSource(ivs), opts)
	var out []pileup.Region
	for b.Scan() {
		r := *b.Region()
		r.Depth = append([]uint32(nil), r.Depth...)
		out = append(out, r)
	}
	require.NoError(t, b.Err())
	return out
}

func ones(n int) []uint32 {
	d := make([]uint32, n)
	for i := range d {
		d[i] = 1
	}
	return d
}

func TestBuilder(t *testing.T) {
	ivs := []interval.Interval{iv("chr1", 0, 10), iv("chr1", 5, 15), iv("chr1", 100, 110)}
	expect.EQ(t, regions(t, ivs, pileup.DefaultOpts), []pileup.Region{
		{Chrom: "chr1", Start: 0, End: 15, Depth: []uint32{1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 1, 1, 1, 1, 1}},
		{Chrom: "chr1", Start: 100, End: 110, Depth: ones(10)},
	})
}

func TestBuilderBoundary(t *testing.T) {
	// An interval starting exactly at the region end still extends the
	// region; one starting a base later does not.
	ivs := []interval.Interval{iv("chr1", 0, 10), iv("chr1", 10, 12), iv("chr1", 13, 14)}
	expect.EQ(t, regions(t, ivs, pileup.DefaultOpts), []pileup.Region{
		{Chrom: "chr1", Start: 0, End: 12, Depth: ones(12)},
		{Chrom: "chr1", Start: 13, End: 14, Depth: ones(1)},
	})
}

func TestBuilderChromosomeChange(t *testing.T) {
	ivs := []interval.Interval{iv("chr1", 0, 10), iv("chr2", 5, 8), iv("chr2", 6, 9)}
	expect.EQ(t, regions(t, ivs, pileup.DefaultOpts), []pileup.Region{
		{Chrom: "chr1", Start: 0, End: 10, Depth: ones(10)},
		{Chrom: "chr2", Start: 5, End: 9, Depth: []uint32{1, 2, 2, 1}},
	})
}

func TestBuilderContained(t *testing.T) {
	ivs := []interval.Interval{iv("chr1", 0, 6), iv("chr1", 1, 3), iv("chr1", 2, 4)}
	expect.EQ(t, regions(t, ivs, pileup.DefaultOpts), []pileup.Region{
		{Chrom: "chr1", Start: 0, End: 6, Depth: []uint32{1, 2, 3, 2, 1, 1}},
	})
}

func TestBuilderZeroLength(t *testing.T) {
	ivs := []interval.Interval{iv("chr1", 5, 5), iv("chr1", 7, 7), iv("chr1", 7, 9), iv("chr1", 20, 20)}
	expect.EQ(t, regions(t, ivs, pileup.DefaultOpts), []pileup.Region{
		{Chrom: "chr1", Start: 7, End: 9, Depth: ones(2)},
	})
}

func TestBuilderEmpty(t *testing.T) {
	expect.EQ(t, len(regions(t, nil, pileup.DefaultOpts)), 0)
}

func TestBuilderStrand(t *testing.T) {
	fwd := iv("chr1", 0, 4)
	fwd.Strand = interval.StrandFwd
	rev := iv("chr1", 2, 8)
	rev.Strand = interval.StrandRev
	ivs := []interval.Interval{fwd, rev}
	expect.EQ(t, regions(t, ivs, pileup.Opts{Strand: interval.StrandFwd}), []pileup.Region{
		{Chrom: "chr1", Start: 0, End: 4, Depth: ones(4)},
	})
	expect.EQ(t, regions(t, ivs, pileup.Opts{Strand: interval.StrandRev}), []pileup.Region{
		{Chrom: "chr1", Start: 2, End: 8, Depth: ones(6)},
	})
	expect.EQ(t, regions(t, ivs, pileup.DefaultOpts), []pileup.Region{
		{Chrom: "chr1", Start: 0, End: 8, Depth: []uint32{1, 1, 2, 2, 1, 1, 1, 1}},
	})
}

func TestBuilderNegativeLength(t *testing.T) {
	b := pileup.NewBuilder(interval.NewSliceSource([]interval.Interval{iv("chr1", 0, 10), iv("chr1", 8, 4)}), pileup.DefaultOpts)
	expect.False(t, b.Scan())
	require.Error(t, b.Err())
	expect.EQ(t, errors.Cause(b.Err()), pileup.ErrNegativeLength)
}

func TestBuilderUnsorted(t *testing.T) {
	ivs := []interval.Interval{iv("chr1", 10, 20), iv("chr1", 5, 12)}
	b := pileup.NewBuilder(interval.NewSliceSource(ivs), pileup.DefaultOpts)
	expect.False(t, b.Scan())
	expect.EQ(t, errors.Cause(b.Err()), interval.ErrUnsorted)

	// With checking on, a revisited chromosome is caught too.
	ivs = []interval.Interval{iv("chr1", 0, 5), iv("chr2", 0, 5), iv("chr1", 10, 20)}
	b = pileup.NewBuilder(interval.NewSliceSource(ivs), pileup.Opts{CheckSorted: true})
	for b.Scan() {
	}
	expect.EQ(t, errors.Cause(b.Err()), interval.ErrUnsorted)
}

func TestBuilderStats(t *testing.T) {
	fwd := iv("chr1", 0, 4)
	fwd.Strand = interval.StrandFwd
	ivs := []interval.Interval{fwd, iv("chr1", 2, 8), iv("chr1", 20, 25)}
	b := pileup.NewBuilder(interval.NewSliceSource(ivs), pileup.Opts{Strand: interval.StrandFwd})
	for b.Scan() {
	}
	require.NoError(t, b.Err())
	expect.EQ(t, b.Stats(), pileup.Stats{Intervals: 3, OtherStrand: 2, Regions: 1, Bases: 4})
}

// TestDepthConservation checks that every region's total depth equals the
// summed length of the intervals piled into it.
func TestDepthConservation(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 20; iter++ {
		ivs := make([]interval.Interval, 1+r.Intn(2000))
		for i := range ivs {
			chrom := "chr1"
			if r.Intn(3) == 0 {
				chrom = "chr2"
			}
			start := pileup.PosType(r.Intn(50000))
			ivs[i] = iv(chrom, start, start+pileup.PosType(r.Intn(300)))
		}
		sort.Slice(ivs, func(i, j int) bool {
			if ivs[i].Chrom != ivs[j].Chrom {
				return ivs[i].Chrom < ivs[j].Chrom
			}
			return ivs[i].Start < ivs[j].Start
		})

		regs := regions(t, ivs, pileup.Opts{CheckSorted: true})
		var total int64
		for i, reg := range regs {
			require.Equal(t, int(reg.End-reg.Start), len(reg.Depth))
			var depth, covered int64
			for _, d := range reg.Depth {
				depth += int64(d)
				require.True(t, d > 0)
			}
			for _, x := range ivs {
				if x.Chrom == reg.Chrom && x.Start >= reg.Start && x.End <= reg.End && x.Start < x.End {
					covered += int64(x.End - x.Start)
				}
			}
			require.Equal(t, covered, depth)
			total += depth
			if i > 0 && regs[i-1].Chrom == reg.Chrom {
				// Regions on a chromosome are separated by at least one base.
				require.True(t, reg.Start > regs[i-1].End)
			}
		}
		var want int64
		for _, x := range ivs {
			want += int64(x.End - x.Start)
		}
		require.Equal(t, want, total)
	}
}
