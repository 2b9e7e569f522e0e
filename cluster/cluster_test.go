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
	"math"
	"testing"

	"github.com/grailbio/seqfiles/cluster"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCluster() *cluster.Cluster {
	return &cluster.Cluster{
		Chrom: "chr1",
		Start: 0,
		End:   20,
		Members: []interval.Interval{
			{Chrom: "chr1", Start: 0, End: 10, Score: 1, HasScore: true, Strand: interval.StrandFwd},
			{Chrom: "chr1", Start: 0, End: 10, Score: 2, HasScore: true, Strand: interval.StrandFwd},
			{Chrom: "chr1", Start: 5, End: 20, Score: 5, HasScore: true, Strand: interval.StrandFwd},
		},
	}
}

func TestClusterHelpers(t *testing.T) {
	c := testCluster()
	expect.EQ(t, c.Len(), interval.PosType(20))
	expect.EQ(t, c.Count(), 3)
	expect.EQ(t, c.UniqueFeatures(), 2)
	expect.EQ(t, c.SumScores(), 8.0)
	expect.EQ(t, c.Strand(), interval.StrandFwd)

	c.Score = 8
	expect.EQ(t, c.Interval(), interval.Interval{Chrom: "chr1", Start: 0, End: 20, Score: 8, HasScore: true, Strand: interval.StrandFwd})

	c.Members[1].Strand = interval.StrandRev
	expect.EQ(t, c.Strand(), interval.StrandNone)
	expect.EQ(t, c.UniqueFeatures(), 3)

	var empty cluster.Cluster
	expect.EQ(t, empty.Strand(), interval.StrandNone)
}

func TestScoreFuncs(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"sum", 8},
		{"mean", 8.0 / 3},
		{"max", 5},
		{"count", 3},
		{"unique", 2},
		{"density", 8.0 / 20},
	}
	for _, tt := range tests {
		f, err := cluster.ParseScoreFunc(tt.name)
		require.NoError(t, err, tt.name)
		assert.InDelta(t, tt.want, f(testCluster()), 1e-12, tt.name)
	}
	_, err := cluster.ParseScoreFunc("median")
	assert.Error(t, err)

	zero := &cluster.Cluster{Chrom: "chr1", Start: 5, End: 5, Members: []interval.Interval{{Chrom: "chr1", Start: 5, End: 5, Score: 3}}}
	expect.EQ(t, cluster.Density(zero), 3.0)
	expect.EQ(t, cluster.Mean(&cluster.Cluster{}), 0.0)
	expect.True(t, math.IsInf(cluster.Max(&cluster.Cluster{}), -1))
}
