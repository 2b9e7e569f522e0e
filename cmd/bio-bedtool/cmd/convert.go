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
	"fmt"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/seqfiles/cluster"
	"github.com/grailbio/seqfiles/encoding/bed"
	"github.com/grailbio/seqfiles/encoding/source"
	"github.com/grailbio/seqfiles/interval"
)

func bwt2bed(ctx context.Context, inPath, outPath string, format bed.Format) error {
	return transform(ctx, inPath, outPath, source.Opts{Format: source.Bowtie}, format, "",
		func(src interval.Source) (interval.Source, error) { return src, nil })
}

func gff2bedgraph(ctx context.Context, inPath, outPath, trackName string) error {
	var trackLine string
	if trackName != "" {
		trackLine = fmt.Sprintf("type=bedGraph name=%q", trackName)
	}
	return transform(ctx, inPath, outPath, source.Opts{Format: source.GFF}, bed.BEDGraph, trackLine,
		func(src interval.Source) (interval.Source, error) { return src, nil })
}

// gffThreshold calls enriched regions over the probes of a tiling-array GFF.
// The probes need not be sorted.
func gffThreshold(ctx context.Context, inPath, outPath string) error {
	return transform(ctx, inPath, outPath, source.Opts{Format: source.GFF}, bed.BED3, "",
		func(src interval.Source) (interval.Source, error) {
			probes, err := interval.ReadAll(src)
			if err != nil {
				return nil, err
			}
			sort.SliceStable(probes, func(i, j int) bool {
				if probes[i].Chrom != probes[j].Chrom {
					return probes[i].Chrom < probes[j].Chrom
				}
				return probes[i].Start < probes[j].Start
			})
			opts := cluster.EnrichedRegionOpts(probes)
			log.Printf("%s: %d probe(s), score threshold %g", inPath, len(probes), opts.ScoreThreshold)
			c, err := cluster.NewClusterer(interval.NewSliceSource(probes), opts)
			if err != nil {
				return nil, err
			}
			return cluster.AsSource(c), nil
		})
}
