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

package cmd

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/seqfiles/encoding/bed"
	"github.com/grailbio/seqfiles/encoding/source"
	"github.com/grailbio/seqfiles/filter"
	"github.com/grailbio/seqfiles/interval"
)

func sizeFilter(ctx context.Context, inPath, outPath string, r filter.Range) error {
	return transform(ctx, inPath, outPath, source.Opts{Format: source.BED}, bed.BED3, "",
		func(src interval.Source) (interval.Source, error) {
			return filter.Size(src, r), nil
		})
}

func valueFilter(ctx context.Context, inPath, outPath string, r filter.Range, bedGraph bool) error {
	in := source.Opts{Format: source.BED}
	if bedGraph {
		in.Format = source.BEDGraph
	}
	return transform(ctx, inPath, outPath, in, bed.BEDGraph, "",
		func(src interval.Source) (interval.Source, error) {
			return filter.Value(src, r), nil
		})
}

type flankOpts struct {
	flank, left, right, buffer int
	format                     bed.Format
}

func (o *flankOpts) resolve() error {
	if o.flank < 0 || o.left < 0 || o.right < 0 || o.buffer < 0 {
		return errors.E(errors.Invalid, "flank sizes must be non-negative")
	}
	if o.flank > 0 {
		if o.left > 0 || o.right > 0 {
			return errors.E(errors.Invalid, "-f cannot be combined with -l or -r")
		}
		o.left, o.right = o.flank, o.flank
	}
	if o.left == 0 || o.right == 0 {
		return errors.E(errors.Invalid, "flanking region not specified; use -f, or both -l and -r")
	}
	return nil
}

// flankSource emits the left then right flank of each interval of src.  A
// left flank clipped away at position 0 is dropped.
type flankSource struct {
	src                 interval.Source
	left, right, buffer interval.PosType
	pending             interval.Interval
	hasPending          bool
}

func (s *flankSource) Scan(iv *interval.Interval) bool {
	if s.hasPending {
		*iv, s.hasPending = s.pending, false
		return true
	}
	if !s.src.Scan(iv) {
		return false
	}
	leftFlank, rightFlank, ok := interval.Flanks(*iv, s.left, s.right, s.buffer)
	if !ok {
		*iv = rightFlank
		return true
	}
	*iv, s.pending, s.hasPending = leftFlank, rightFlank, true
	return true
}

func (s *flankSource) Err() error {
	return s.src.Err()
}

func flank(ctx context.Context, inPath, outPath string, opts flankOpts) error {
	if err := opts.resolve(); err != nil {
		return err
	}
	return transform(ctx, inPath, outPath, source.Opts{Format: source.BED}, opts.format, "",
		func(src interval.Source) (interval.Source, error) {
			return &flankSource{
				src:    src,
				left:   interval.PosType(opts.left),
				right:  interval.PosType(opts.right),
				buffer: interval.PosType(opts.buffer),
			}, nil
		})
}
