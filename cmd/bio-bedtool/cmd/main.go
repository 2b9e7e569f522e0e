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
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/seqfiles/encoding/bed"
	"github.com/grailbio/seqfiles/encoding/source"
	"github.com/grailbio/seqfiles/features"
	"github.com/grailbio/seqfiles/filter"
	"v.io/x/lib/cmdline"
)

const formatHelp = "Output format: bed3, bed4, bed6 (or bed) or bedgraph"

func rangeFlags(cmd *cmdline.Command, what string) (min, max *float64) {
	min = cmd.Flags.Float64("min", math.Inf(-1), fmt.Sprintf("Keep intervals whose %s is greater than this", what))
	max = cmd.Flags.Float64("max", math.Inf(1), fmt.Sprintf("Keep intervals whose %s is less than this", what))
	return min, max
}

func newCmdSizeFilter() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "sizefilter",
		Short:    "Keep BED intervals by length, writing BED3",
		ArgsName: "inpath outpath",
	}
	min, max := rangeFlags(cmd, "length")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("sizefilter takes inpath outpath, but found %v", argv)
		}
		return sizeFilter(vcontext.Background(), argv[0], argv[1], filter.Range{Min: *min, Max: *max})
	})
	return cmd
}

func newCmdValueFilter() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "valuefilter",
		Short:    "Keep BED intervals by score, writing chrom, start, end and score",
		ArgsName: "inpath outpath",
	}
	min, max := rangeFlags(cmd, "score")
	bedGraph := cmd.Flags.Bool("bedgraph", false, "Read the score from column 4 of a bedGraph instead of column 5 of a BED")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("valuefilter takes inpath outpath, but found %v", argv)
		}
		return valueFilter(vcontext.Background(), argv[0], argv[1], filter.Range{Min: *min, Max: *max}, *bedGraph)
	})
	return cmd
}

func newCmdFlank() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "flank",
		Short:    "Write the regions flanking each BED interval",
		ArgsName: "inpath outpath",
	}
	opts := flankOpts{}
	cmd.Flags.IntVar(&opts.flank, "f", 0, "Flank size on each side; cannot be combined with -l or -r")
	cmd.Flags.IntVar(&opts.left, "l", 0, "Left flank size")
	cmd.Flags.IntVar(&opts.right, "r", 0, "Right flank size")
	cmd.Flags.IntVar(&opts.buffer, "buffer", 0, "Bases next to the interval to leave out of each flank")
	format := cmd.Flags.String("format", "bed3", formatHelp)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("flank takes inpath outpath, but found %v", argv)
		}
		var err error
		if opts.format, err = bed.ParseFormat(*format); err != nil {
			return err
		}
		return flank(vcontext.Background(), argv[0], argv[1], opts)
	})
	return cmd
}

func newCmdBwt2Bed() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "bwt2bed",
		Short:    "Convert Bowtie alignments to BED",
		ArgsName: "inpath outpath",
	}
	format := cmd.Flags.String("format", "bed6", formatHelp)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("bwt2bed takes inpath outpath, but found %v", argv)
		}
		f, err := bed.ParseFormat(*format)
		if err != nil {
			return err
		}
		return bwt2bed(vcontext.Background(), argv[0], argv[1], f)
	})
	return cmd
}

func newCmdGFF2BedGraph() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "gff2bedgraph",
		Short:    "Convert GFF scores (e.g. tiling-array probes) to bedGraph",
		ArgsName: "inpath outpath",
	}
	trackName := cmd.Flags.String("trackname", "", "If set, write a leading track line with this name")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("gff2bedgraph takes inpath outpath, but found %v", argv)
		}
		return gff2bedgraph(vcontext.Background(), argv[0], argv[1], *trackName)
	})
	return cmd
}

func newCmdGFFThreshold() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "gffthreshold",
		Short: `Call enriched regions in a tiling-array GFF.
A region is at least 4 probes scoring above mean + 2.5 standard deviations,
each starting within 500bp of the previous probe's end.  Regions are written as BED3.`,
		ArgsName: "inpath outpath",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("gffthreshold takes inpath outpath, but found %v", argv)
		}
		return gffThreshold(vcontext.Background(), argv[0], argv[1])
	})
	return cmd
}

func newCmdWigScale() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "wigscale",
		Short:    "Scale the values of a WIG track to per-million of its total",
		ArgsName: "inpath outpath",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("wigscale takes inpath outpath, but found %v", argv)
		}
		return wigScale(vcontext.Background(), argv[0], argv[1])
	})
	return cmd
}

func newCmdCount() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "count",
		Short: `Count reads overlapping annotated features.
Reads are tallied per feature type, plus "total", "empty" (no gene),
"exon-and-intron", "exon-only" and "intron-only".`,
		ArgsName: "readspath outpath",
	}
	gffPath := cmd.Flags.String("gff", "", "GFF file of features (required)")
	classes := cmd.Flags.String("classes", strings.Join(features.DefaultClasses, ","), "Comma-separated GFF feature types to count")
	label := cmd.Flags.String("label", "", "First line of the report; defaults to readspath")
	format := cmd.Flags.String("format", "auto", "Read format: auto, bed, bowtie or sam")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("count takes readspath outpath, but found %v", argv)
		}
		if *gffPath == "" {
			return fmt.Errorf("count requires -gff")
		}
		f, err := source.ParseFormat(*format)
		if err != nil {
			return err
		}
		return countReads(vcontext.Background(), argv[0], argv[1], countOpts{
			gffPath: *gffPath,
			classes: strings.Split(*classes, ","),
			label:   *label,
			format:  f,
		})
	})
	return cmd
}

func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-bedtool",
			Short:    "Tools for converting and filtering BED, GFF, Bowtie and WIG files",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdSizeFilter(),
				newCmdValueFilter(),
				newCmdFlank(),
				newCmdBwt2Bed(),
				newCmdGFF2BedGraph(),
				newCmdGFFThreshold(),
				newCmdWigScale(),
				newCmdCount(),
			},
		})
}
