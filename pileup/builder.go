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

package pileup

import (
	"github.com/grailbio/seqfiles/interval"
	"github.com/pkg/errors"
)

// Stats counts what a Builder did with its input.
type Stats struct {
	// Intervals is the number of intervals read.
	Intervals int
	// OtherStrand is the number of intervals dropped by Opts.Strand.
	OtherStrand int
	// Regions and Bases count the emitted regions and the positions they
	// cover.
	Regions int
	Bases   int64
}

// Builder turns a sorted interval stream into coverage regions.  A sample
// usage:
//
//   b := pileup.NewBuilder(src, pileup.DefaultOpts)
//   for b.Scan() {
//     r := b.Region()
//     ...
//   }
//   if err := b.Err(); err != nil {
//     ...
//   }
type Builder struct {
	src  interval.Source
	opts Opts

	iv   interval.Interval
	open bool
	// cur is the open region; out is the last emitted one.
	cur, out *Region
	done     bool
	err      error
	stats    Stats
}

// NewBuilder creates a Builder reading from src.
func NewBuilder(src interval.Source, opts Opts) *Builder {
	if opts.CheckSorted {
		src = interval.NewCheckedSource(src)
	}
	return &Builder{src: src, opts: opts, cur: &Region{}, out: &Region{}}
}

// Scan advances to the next non-empty region.  It returns false at the end
// of the input or on error.
func (b *Builder) Scan() bool {
	for !b.done {
		if !b.src.Scan(&b.iv) {
			b.done = true
			if b.err = b.src.Err(); b.err != nil {
				return false
			}
			if b.open {
				b.open = false
				return b.flush()
			}
			return false
		}
		if b.err = b.admit(&b.iv); b.err != nil {
			b.done = true
			return false
		}
		iv := &b.iv
		if b.opts.Strand != interval.StrandNone && iv.Strand != b.opts.Strand {
			b.stats.OtherStrand++
			continue
		}
		if b.open && iv.Chrom == b.cur.Chrom && iv.Start <= b.cur.End {
			b.cur.add(iv)
			continue
		}
		flushed := b.open && b.flush()
		b.cur.reset(iv)
		b.open = true
		if flushed {
			return true
		}
	}
	return false
}

// admit validates iv before it is piled up.
func (b *Builder) admit(iv *interval.Interval) error {
	b.stats.Intervals++
	if iv.Start > iv.End {
		return errors.Wrapf(ErrNegativeLength, "pileup: %s:%d-%d", iv.Chrom, iv.Start, iv.End)
	}
	// The depth array is indexed from the region start, so an earlier start
	// can't be piled up even when sortedness isn't being checked.
	if b.open && iv.Chrom == b.cur.Chrom && iv.Start < b.cur.Start {
		return errors.Wrapf(interval.ErrUnsorted, "%s:%d precedes region start %d", iv.Chrom, iv.Start, b.cur.Start)
	}
	return nil
}

// flush emits the open region unless it is empty.
func (b *Builder) flush() bool {
	if b.cur.End == b.cur.Start {
		return false
	}
	b.stats.Regions++
	b.stats.Bases += int64(b.cur.End - b.cur.Start)
	b.cur, b.out = b.out, b.cur
	return true
}

// Region returns the region found by the last successful Scan.  It is
// overwritten by the following Scan.
func (b *Builder) Region() *Region {
	return b.out
}

// Err returns the error, if any, that ended the scan.
func (b *Builder) Err() error {
	return b.err
}

// Stats returns counters for the input consumed so far.
func (b *Builder) Stats() Stats {
	return b.stats
}
