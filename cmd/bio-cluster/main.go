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
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/seqfiles/cluster"
	"github.com/grailbio/seqfiles/encoding/source"
	"github.com/grailbio/seqfiles/interval"
)

var (
	gap         = flag.Int64("gap", cluster.DefaultOpts.GapWidth, "Close a cluster when the next interval starts at least this many bases past its end")
	threshold   = flag.Float64("threshold", 0, "Skip intervals scoring below this value")
	useThresh   = flag.Bool("use-threshold", false, "Apply -threshold; set implicitly when -threshold is nonzero")
	minSpan     = flag.Int("min-span", 0, "Minimum cluster span in bases; 0 = off")
	minCount    = flag.Int("min-count", 0, "Minimum number of intervals per cluster; 0 = off")
	minScore    = flag.Float64("min-score", 0, "Minimum aggregate cluster score; 0 = off")
	forcedSpan  = flag.Int("forced-span", 0, "Cap clusters at this span and pad shorter ones to it; 0 = off")
	scoreFunc   = flag.String("score", "sum", "Cluster score: sum, mean, max, count, unique or density")
	preset      = flag.String("preset", "", "Run a predefined two-pass pipeline (brennecke or hannon) instead of the single pass described by the flags above")
	format      = flag.String("format", "auto", "Input format: auto, bed, bedgraph, bowtie, sam or gff")
	forceScore  = flag.Float64("force-score", 0, "Assign this score to every input interval")
	useForce    = flag.Bool("use-force-score", false, "Apply -force-score; set implicitly when -force-score is nonzero")
	region      = flag.String("region", "", "Restrict clustering to the specified region. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>")
	maskPath    = flag.String("mask", "", "BED file of regions to keep; see -exclude")
	exclude     = flag.Bool("exclude", false, "Drop intervals overlapping -mask instead of keeping them")
	track       = flag.String("track", "", "Attributes of a leading track line, e.g. 'name=\"clusters\"'")
	checkSorted = flag.Bool("check-sorted", true, "Fail on unsorted input")
	outPath     = flag.String("out", "-", "Output BED path; .gz outputs are BGZF-compressed")
)

func bioClusterUsage() {
	fmt.Printf("Usage: %s [OPTIONS] inputpath\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func runOpts() (cluster.RunOpts, error) {
	fmtID, err := source.ParseFormat(*format)
	if err != nil {
		return cluster.RunOpts{}, err
	}
	opts := cluster.RunOpts{
		Input:     source.Opts{Format: fmtID},
		Mask:      interval.MaskOpts{Region: *region, BEDPath: *maskPath, Exclude: *exclude},
		TrackLine: *track,
	}
	opts.Input.BED.ForceScore = *forceScore
	opts.Input.BED.UseForceScore = *useForce || *forceScore != 0
	if *preset != "" {
		p, err := cluster.LookupPreset(*preset)
		if err != nil {
			return cluster.RunOpts{}, err
		}
		p.Apply(&opts)
		opts.Passes = append(cluster.Pipeline(nil), opts.Passes...)
		for i := range opts.Passes {
			opts.Passes[i].CheckSorted = *checkSorted
		}
		return opts, nil
	}
	score, err := cluster.ParseScoreFunc(*scoreFunc)
	if err != nil {
		return cluster.RunOpts{}, err
	}
	opts.Passes = cluster.Pipeline{{
		GapWidth:        *gap,
		ScoreThreshold:  *threshold,
		UseThreshold:    *useThresh || *threshold != 0,
		MinClusterSpan:  interval.PosType(*minSpan),
		MinFeatureCount: *minCount,
		MinClusterScore: *minScore,
		ForcedSpan:      interval.PosType(*forcedSpan),
		ScoreFunc:       score,
		CheckSorted:     *checkSorted,
	}}
	return opts, nil
}

func main() {
	flag.Usage = bioClusterUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 1 {
		log.Fatalf("Expected exactly one input path, got: '%s'", strings.Join(flag.Args(), " "))
	}
	opts, err := runOpts()
	if err != nil {
		log.Fatalf("%v", err)
	}
	ctx := vcontext.Background()
	if err := cluster.Run(ctx, flag.Arg(0), *outPath, opts); err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}
