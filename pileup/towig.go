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
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/seqfiles/encoding/source"
	"github.com/grailbio/seqfiles/encoding/wig"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/seqfiles/util"
)

// WigOpts configures ToWig.
type WigOpts struct {
	Input  source.Opts
	Mask   interval.MaskOpts
	Pileup Opts
	Wig    wig.Opts
	// Verbose logs each chromosome as it is reached.
	Verbose bool
}

// DefaultWigOpts writes unscaled coverage of all reads.
var DefaultWigOpts = WigOpts{Pileup: DefaultOpts, Wig: wig.DefaultOpts}

// ToWig writes the coverage of the reads in inPath to outPath as a
// fixedStep WIG track.  "-" reads stdin or writes stdout; a .gz output path
// is BGZF-compressed.
func ToWig(ctx context.Context, inPath, outPath string, opts *WigOpts) (err error) {
	in, err := source.Open(ctx, inPath, opts.Input)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	src, err := opts.Mask.Apply(in)
	if err != nil {
		return err
	}
	out, err := util.CreateOutput(ctx, outPath)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()

	b := NewBuilder(src, opts.Pileup)
	if err = WriteWig(b, wig.NewWriter(out.Writer(), opts.Wig), opts.Verbose); err != nil {
		return err
	}
	stats := b.Stats()
	log.Printf("%s: %d interval(s) piled into %d region(s) covering %d base(s)", inPath, stats.Intervals-stats.OtherStrand, stats.Regions, stats.Bases)
	return nil
}

// WriteWig drains b into w, preceded by the track line.
func WriteWig(b *Builder, w *wig.Writer, verbose bool) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	var chrom string
	for b.Scan() {
		r := b.Region()
		if r.Chrom != chrom {
			chrom = r.Chrom
			if verbose {
				log.Printf("pileup: %s", chrom)
			} else {
				log.Debug.Printf("pileup: %s", chrom)
			}
		}
		if err := w.WriteRegion(r.Chrom, r.Start, r.Depth); err != nil {
			return err
		}
	}
	if err := b.Err(); err != nil {
		return err
	}
	return w.Flush()
}
