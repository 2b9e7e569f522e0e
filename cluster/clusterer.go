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
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/seqfiles/interval"
)

// Opts configures a Clusterer.  Zero-valued thresholds are disabled.
type Opts struct {
	// GapWidth closes the open cluster when the next interval starts at least
	// this many bases past the cluster's end.  0 merges overlapping intervals
	// only; 1 also merges book-ended ones.
	GapWidth int64
	// ScoreThreshold, when UseThreshold is set, drops intervals scoring below
	// it before they can open or extend a cluster.  Intervals without a score
	// count as 0.
	ScoreThreshold float64
	UseThreshold   bool
	// MinClusterSpan is the minimum End-Start of an emitted cluster, measured
	// before padding.
	MinClusterSpan interval.PosType
	// MinFeatureCount is the minimum number of members of an emitted cluster.
	MinFeatureCount int
	// MinClusterScore is the minimum aggregate score of an emitted cluster.
	MinClusterScore float64
	// ForcedSpan refuses extensions that would make a cluster longer than
	// ForcedSpan, and pads shorter clusters to exactly ForcedSpan on emission.
	ForcedSpan interval.PosType
	// ScoreFunc aggregates member scores.  nil means Sum.
	ScoreFunc ScoreFunc
	// Filter, if non-nil, is an extra acceptance test run after the
	// thresholds above.
	Filter func(c *Cluster) bool
	// CheckSorted makes the clusterer fail with interval.ErrUnsorted instead of
	// silently mis-clustering unsorted input.
	CheckSorted bool
}

// DefaultOpts merges overlapping and book-ended intervals, with no
// thresholds.
var DefaultOpts = Opts{GapWidth: 1}

// Validate reports contradictory or out-of-range settings.
func (o *Opts) Validate() error {
	switch {
	case o.GapWidth < 0:
		return errors.E(errors.Invalid, fmt.Sprintf("gap width must be nonnegative, got %d", o.GapWidth))
	case o.MinClusterSpan < 0:
		return errors.E(errors.Invalid, fmt.Sprintf("minimum cluster span must be nonnegative, got %d", o.MinClusterSpan))
	case o.MinFeatureCount < 0:
		return errors.E(errors.Invalid, fmt.Sprintf("minimum feature count must be nonnegative, got %d", o.MinFeatureCount))
	case o.MinClusterScore < 0:
		return errors.E(errors.Invalid, fmt.Sprintf("minimum cluster score must be nonnegative, got %v", o.MinClusterScore))
	case o.ForcedSpan < 0:
		return errors.E(errors.Invalid, fmt.Sprintf("forced span must be nonnegative, got %d", o.ForcedSpan))
	case o.ForcedSpan > 0 && o.MinClusterSpan > o.ForcedSpan:
		return errors.E(errors.Invalid, fmt.Sprintf("minimum cluster span %d exceeds forced span %d", o.MinClusterSpan, o.ForcedSpan))
	}
	return nil
}

// Stats counts what a Clusterer did with its input.
type Stats struct {
	// Intervals is the number of intervals read.
	Intervals int
	// BelowThreshold is the number of intervals dropped by ScoreThreshold.
	BelowThreshold int
	// Emitted and Discarded count closed clusters that passed and failed the
	// acceptance tests.
	Emitted   int
	Discarded int
}

// Clusterer merges a sorted interval stream into clusters.  A sample usage:
//
//   c, err := cluster.NewClusterer(src, opts)
//   if err != nil {
//     ...
//   }
//   for c.Scan() {
//     cl := c.Cluster()
//     ...
//   }
//   if err := c.Err(); err != nil {
//     ...
//   }
//
// A Clusterer is single-pass and not threadsafe.
type Clusterer struct {
	src       interval.Source
	opts      Opts
	scoreFunc ScoreFunc

	iv   interval.Interval
	open bool
	// cur is the open cluster; out is the last emitted one.  They swap on
	// emission so out stays valid until the next Scan.
	cur, out *Cluster
	done     bool
	err      error
	stats    Stats
}

// NewClusterer creates a Clusterer reading from src.
func NewClusterer(src interval.Source, opts Opts) (*Clusterer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &Clusterer{
		src:       src,
		opts:      opts,
		scoreFunc: opts.ScoreFunc,
		cur:       &Cluster{},
		out:       &Cluster{},
	}
	if c.scoreFunc == nil {
		c.scoreFunc = Sum
	}
	if opts.CheckSorted {
		c.src = interval.NewCheckedSource(src)
	}
	return c, nil
}

// Scan advances to the next emitted cluster.  It returns false at the end of
// the input or on error.
func (c *Clusterer) Scan() bool {
	for !c.done {
		if !c.src.Scan(&c.iv) {
			c.done = true
			if c.err = c.src.Err(); c.err != nil {
				return false
			}
			if c.open {
				c.open = false
				return c.close()
			}
			return false
		}
		c.stats.Intervals++
		if c.opts.UseThreshold && c.iv.Score < c.opts.ScoreThreshold {
			c.stats.BelowThreshold++
			continue
		}
		if c.open && c.accepts(&c.iv) {
			c.cur.extend(&c.iv)
			continue
		}
		emitted := c.open && c.close()
		c.cur.reset(&c.iv)
		c.open = true
		if emitted {
			return true
		}
	}
	return false
}

// accepts reports whether iv may join the open cluster.  The chromosome is
// checked first, then the gap, then the forced span.
func (c *Clusterer) accepts(iv *interval.Interval) bool {
	cur := c.cur
	if iv.Chrom != cur.Chrom {
		return false
	}
	if int64(iv.Start)-int64(cur.End) >= c.opts.GapWidth {
		return false
	}
	if c.opts.ForcedSpan > 0 && iv.End-cur.Start > c.opts.ForcedSpan {
		return false
	}
	return true
}

// close finalizes the open cluster.  If it passes the acceptance tests it
// becomes the output cluster and close returns true.
func (c *Clusterer) close() bool {
	cl := c.cur
	if !c.passes(cl) {
		c.stats.Discarded++
		return false
	}
	if c.opts.ForcedSpan > 0 && cl.Len() < c.opts.ForcedSpan {
		end := int64(cl.Start) + int64(c.opts.ForcedSpan)
		if end > interval.PosTypeMax {
			end = interval.PosTypeMax
		}
		cl.End = interval.PosType(end)
	}
	c.stats.Emitted++
	c.cur, c.out = c.out, c.cur
	return true
}

func (c *Clusterer) passes(cl *Cluster) bool {
	if c.opts.MinClusterSpan > 0 && cl.Len() < c.opts.MinClusterSpan {
		return false
	}
	if c.opts.MinFeatureCount > 0 && cl.Count() < c.opts.MinFeatureCount {
		return false
	}
	cl.Score = c.scoreFunc(cl)
	if c.opts.MinClusterScore > 0 && cl.Score < c.opts.MinClusterScore {
		return false
	}
	return c.opts.Filter == nil || c.opts.Filter(cl)
}

// Cluster returns the cluster found by the last successful Scan.  It is
// overwritten by the following Scan.
func (c *Clusterer) Cluster() *Cluster {
	return c.out
}

// Err returns the error, if any, that ended the scan.
func (c *Clusterer) Err() error {
	return c.err
}

// Stats returns counters for the input consumed so far.
func (c *Clusterer) Stats() Stats {
	return c.stats
}

// clusterSource adapts a Clusterer to interval.Source.
type clusterSource struct {
	c *Clusterer
}

// AsSource returns the clusters of c as an interval stream, so they can be
// written out or clustered again.
func AsSource(c *Clusterer) interval.Source {
	return clusterSource{c}
}

func (s clusterSource) Scan(iv *interval.Interval) bool {
	if !s.c.Scan() {
		return false
	}
	*iv = s.c.Cluster().Interval()
	return true
}

func (s clusterSource) Err() error {
	return s.c.Err()
}

// Pipeline is a sequence of clustering passes.  Each pass clusters the
// clusters emitted by the previous one.
type Pipeline []Opts

// Validate checks every pass.
func (p Pipeline) Validate() error {
	if len(p) == 0 {
		return errors.E(errors.Invalid, "empty cluster pipeline")
	}
	for i := range p {
		if err := p[i].Validate(); err != nil {
			return errors.E(err, fmt.Sprintf("pass %d", i+1))
		}
	}
	return nil
}

// Run chains the passes over src and returns the final pass's Clusterer.
// The earlier passes are driven lazily as the final one is scanned.
func (p Pipeline) Run(src interval.Source) (*Clusterer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var c *Clusterer
	for _, opts := range p {
		var err error
		if c, err = NewClusterer(src, opts); err != nil {
			return nil, err
		}
		src = AsSource(c)
	}
	return c, nil
}
