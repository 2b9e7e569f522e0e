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

package cluster_test

import (
	"testing"

	"github.com/grailbio/seqfiles/cluster"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stranded(start, end interval.PosType, strand interval.Strand) interval.Interval {
	return interval.Interval{Chrom: "chr1", Start: start, End: end, Score: 2, HasScore: true, Strand: strand}
}

func runPreset(t *testing.T, p *cluster.Preset, ivs []interval.Interval) []interval.Interval {
	c, err := p.Passes.Run(interval.NewSliceSource(ivs))
	require.NoError(t, err)
	var out []interval.Interval
	for c.Scan() {
		out = append(out, c.Cluster().Interval())
	}
	require.NoError(t, c.Err())
	return out
}

func TestBrennecke(t *testing.T) {
	ivs := []interval.Interval{
		scored("chr1", 100, 120, 3),
		scored("chr1", 200, 220, 3),
		// Alone in its window, and scoring too low.
		scored("chr1", 6000, 6020, 1),
		scored("chr1", 20000, 20020, 10),
		scored("chr2", 0, 20, 4),
	}
	// The windows [100,5100) and [20000,25000) are 14900 bases apart, so they
	// merge in the second pass.
	expect.EQ(t, runPreset(t, &cluster.Brennecke, ivs), []interval.Interval{
		{Chrom: "chr1", Start: 100, End: 25000, Score: 16, HasScore: true},
	})
}

func TestHannon(t *testing.T) {
	var ivs []interval.Interval
	// Eleven windows 250 bases apart, each holding four distinct reads and
	// one duplicate.
	for k := interval.PosType(0); k < 11; k++ {
		base := k * 250
		for _, off := range []interval.PosType{0, 0, 10, 20, 30} {
			ivs = append(ivs, stranded(base+off, base+off+20, interval.StrandFwd))
		}
	}
	// An isolated window scoring 4 falls short of the summed score of 40.
	for _, off := range []interval.PosType{0, 10, 20, 30} {
		ivs = append(ivs, stranded(100000+off, 100020+off, interval.StrandFwd))
	}
	// Too few distinct reads.
	ivs = append(ivs, stranded(200000, 200020, interval.StrandRev), stranded(200000, 200020, interval.StrandRev), stranded(200010, 200030, interval.StrandRev))

	out := runPreset(t, &cluster.Hannon, ivs)
	require.Equal(t, 1, len(out))
	expect.EQ(t, out[0].Start, interval.PosType(0))
	expect.EQ(t, out[0].End, interval.PosType(2700))
	expect.EQ(t, out[0].Strand, interval.StrandFwd)
	assert.InDelta(t, 44.0/2700, out[0].Score, 1e-12)
}

func TestPresetApply(t *testing.T) {
	p, err := cluster.LookupPreset("hannon")
	require.NoError(t, err)
	var opts cluster.RunOpts
	p.Apply(&opts)
	expect.EQ(t, len(opts.Passes), 2)
	expect.True(t, opts.Input.BED.UseForceScore)
	expect.EQ(t, opts.Input.BED.ForceScore, 2.0)
	expect.EQ(t, opts.TrackLine, `name="clustered"`)

	opts = cluster.RunOpts{TrackLine: "name=mine"}
	p, err = cluster.LookupPreset("brennecke")
	require.NoError(t, err)
	p.Apply(&opts)
	expect.False(t, opts.Input.BED.UseForceScore)
	expect.EQ(t, opts.TrackLine, "name=mine")

	_, err = cluster.LookupPreset("nope")
	assert.Error(t, err)
}

func TestSDThreshold(t *testing.T) {
	ivs := []interval.Interval{scored("chr1", 0, 1, 0), scored("chr1", 1, 2, 0), scored("chr1", 2, 3, 0), scored("chr1", 3, 4, 0), scored("chr1", 4, 5, 10)}
	// mean 2, population sd 4.
	assert.InDelta(t, 6.0, cluster.SDThreshold(ivs, 1), 1e-9)
	assert.InDelta(t, 12.0, cluster.EnrichedRegionOpts(ivs).ScoreThreshold, 1e-9)
	expect.EQ(t, cluster.SDThreshold(nil, 2.5), 0.0)
}

func TestEnrichedRegions(t *testing.T) {
	var probes []interval.Interval
	for i := interval.PosType(0); i < 100; i++ {
		score := 0.0
		if i >= 5 && i < 10 {
			score = 10
		}
		probes = append(probes, scored("chr1", i*100, i*100+50, score))
	}
	// Three enriched probes are too few.
	for i := interval.PosType(0); i < 3; i++ {
		probes = append(probes, scored("chr2", i*100, i*100+50, 10))
	}
	opts := cluster.EnrichedRegionOpts(probes)
	c, err := cluster.NewClusterer(interval.NewSliceSource(probes), opts)
	require.NoError(t, err)
	var out []interval.Interval
	for c.Scan() {
		iv := c.Cluster().Interval()
		out = append(out, interval.Interval{Chrom: iv.Chrom, Start: iv.Start, End: iv.End})
	}
	require.NoError(t, c.Err())
	expect.EQ(t, out, []interval.Interval{{Chrom: "chr1", Start: 500, End: 950}})
}
