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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/seqfiles/encoding/source"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/seqfiles/pileup"
	"github.com/grailbio/seqfiles/util"
)

var (
	strand      = flag.String("strand", "", "Only count reads on this strand (+ or -); default is both")
	scale       = flag.Float64("scale", pileup.DefaultWigOpts.Wig.Scale, "Multiply every depth by this factor")
	track       = flag.String("track", "", "Extra attributes appended to the track line")
	verbose     = flag.Bool("verbose", false, "Log each chromosome as it is reached")
	format      = flag.String("format", "auto", "Input format: auto, bed, bowtie or sam")
	region      = flag.String("region", "", "Restrict pileup to the specified region. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>")
	maskPath    = flag.String("mask", "", "BED file of regions to keep; see -exclude")
	exclude     = flag.Bool("exclude", false, "Drop reads overlapping -mask instead of keeping them")
	checkSorted = flag.Bool("check-sorted", true, "Fail on reads split across chromosome blocks")
	gzip        = flag.Bool("gzip", false, "With several inputs, BGZF-compress each output")
	outPath     = flag.String("out", "-", "Output WIG path when there is a single input; .gz outputs are BGZF-compressed")
)

func bioBed2WigUsage() {
	fmt.Printf("Usage: %s [OPTIONS] inputpath...\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

// wigPath returns the output path for one of several inputs.
func wigPath(inPath string, compress bool) string {
	if util.IsCompressedPath(inPath) {
		inPath = strings.TrimSuffix(inPath, filepath.Ext(inPath))
	}
	out := strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".wig"
	if compress {
		out += ".gz"
	}
	return out
}

func wigOpts() (pileup.WigOpts, error) {
	opts := pileup.DefaultWigOpts
	var err error
	if opts.Input.Format, err = source.ParseFormat(*format); err != nil {
		return opts, err
	}
	if opts.Pileup.Strand, err = interval.ParseStrand(*strand); err != nil {
		return opts, err
	}
	opts.Pileup.CheckSorted = *checkSorted
	opts.Mask = interval.MaskOpts{Region: *region, BEDPath: *maskPath, Exclude: *exclude}
	opts.Wig.TrackInfo = *track
	opts.Wig.Scale = *scale
	opts.Verbose = *verbose
	return opts, nil
}

func main() {
	flag.Usage = bioBed2WigUsage
	shutdown := grail.Init()
	defer shutdown()

	inputs := flag.Args()
	if len(inputs) == 0 {
		log.Fatalf("Missing positional arguments (at least one input path required)")
	}
	opts, err := wigOpts()
	if err != nil {
		log.Fatalf("%v", err)
	}
	ctx := vcontext.Background()
	if len(inputs) == 1 {
		err = pileup.ToWig(ctx, inputs[0], *outPath, &opts)
	} else {
		err = traverse.Each(len(inputs), func(i int) error {
			return pileup.ToWig(ctx, inputs[i], wigPath(inputs[i], *gzip), &opts)
		})
	}
	if err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}
