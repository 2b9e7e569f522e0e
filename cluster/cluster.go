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

package cluster

import (
	"github.com/grailbio/seqfiles/interval"
)

// Cluster is a run of intervals on one chromosome that were merged together.
type Cluster struct {
	Chrom string
	// Start is the minimum member start.
	Start interval.PosType
	// End is the maximum member end, or Start+ForcedSpan if the cluster was
	// padded on emission.
	End interval.PosType
	// Members are the merged intervals, in input order.
	Members []interval.Interval
	// Score is the aggregate computed by the clusterer's ScoreFunc when the
	// cluster was closed.
	Score float64
}

// Len returns the number of bases spanned by c.
func (c *Cluster) Len() interval.PosType {
	return c.End - c.Start
}

// Count returns the number of member intervals.
func (c *Cluster) Count() int {
	return len(c.Members)
}

type featureKey struct {
	start, end interval.PosType
	strand     interval.Strand
}

// UniqueFeatures returns the number of distinct (start, end, strand) member
// positions.  Reads stacked on the same position count once.
func (c *Cluster) UniqueFeatures() int {
	seen := make(map[featureKey]struct{}, len(c.Members))
	for i := range c.Members {
		m := &c.Members[i]
		seen[featureKey{m.Start, m.End, m.Strand}] = struct{}{}
	}
	return len(seen)
}

// SumScores returns the sum of the member scores.  Members without a score
// contribute 0.
func (c *Cluster) SumScores() float64 {
	total := 0.0
	for i := range c.Members {
		total += c.Members[i].Score
	}
	return total
}

// Strand returns the strand shared by all members, or StrandNone if they
// disagree.
func (c *Cluster) Strand() interval.Strand {
	if len(c.Members) == 0 {
		return interval.StrandNone
	}
	s := c.Members[0].Strand
	for i := 1; i < len(c.Members); i++ {
		if c.Members[i].Strand != s {
			return interval.StrandNone
		}
	}
	return s
}

// Interval returns the record c serializes to: its span, aggregate score and
// common strand, with no name.
func (c *Cluster) Interval() interval.Interval {
	return interval.Interval{
		Chrom:    c.Chrom,
		Start:    c.Start,
		End:      c.End,
		Score:    c.Score,
		HasScore: true,
		Strand:   c.Strand(),
	}
}

// reset starts a new cluster seeded by iv, reusing the member buffer.
func (c *Cluster) reset(iv *interval.Interval) {
	c.Chrom = iv.Chrom
	c.Start = iv.Start
	c.End = iv.End
	c.Members = append(c.Members[:0], *iv)
	c.Score = 0
}

// extend adds iv to c.
func (c *Cluster) extend(iv *interval.Interval) {
	if iv.End > c.End {
		c.End = iv.End
	}
	c.Members = append(c.Members, *iv)
}
