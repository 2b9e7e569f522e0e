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

// Package source opens interval files of any supported format as an
// interval.Source.
package source

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/seqfiles/encoding/bed"
	"github.com/grailbio/seqfiles/encoding/bowtie"
	"github.com/grailbio/seqfiles/encoding/gffreads"
	"github.com/grailbio/seqfiles/encoding/samreads"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/seqfiles/util"
)

// Format is an input file format.
type Format int

const (
	// Auto picks the format from the file extension, defaulting to BED.
	Auto Format = iota
	// BED is BED3 through BED6.
	BED
	// BEDGraph is chrom, start, end, value.
	BEDGraph
	// Bowtie is the default bowtie alignment output.
	Bowtie
	// SAM is SAM text.
	SAM
	// GFF is GFF2/GFF3.
	GFF
)

var formatNames = map[string]Format{
	"auto":     Auto,
	"bed":      BED,
	"bedgraph": BEDGraph,
	"bowtie":   Bowtie,
	"sam":      SAM,
	"gff":      GFF,
}

// ParseFormat converts a command-line format name to a Format.
func ParseFormat(name string) (Format, error) {
	if f, ok := formatNames[strings.ToLower(name)]; ok {
		return f, nil
	}
	return Auto, errors.E(errors.Invalid, "unknown input format", name)
}

// FormatForPath guesses the format of path from its extension.  A trailing
// compression extension is ignored.
func FormatForPath(path string) Format {
	if util.IsCompressedPath(path) {
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bedgraph", ".bg":
		return BEDGraph
	case ".bwt", ".bowtie":
		return Bowtie
	case ".sam":
		return SAM
	case ".gff", ".gff2", ".gff3", ".gtf":
		return GFF
	}
	return BED
}

// Opts configures Open and New.
type Opts struct {
	Format Format
	// BED is used for the BED and BEDGraph formats.  BEDGraph is implied by
	// the BEDGraph format.  BED.ForceScore applies to every format.
	BED bed.Opts
}

// New returns a Source reading r in the given format.  Auto is treated as
// BED.
func New(r io.Reader, opts Opts) interval.Source {
	var src interval.Source
	switch opts.Format {
	case BEDGraph:
		bedOpts := opts.BED
		bedOpts.BEDGraph = true
		return bed.NewScanner(r, bedOpts)
	case Bowtie:
		src = bowtie.NewScanner(r)
	case SAM:
		src = samreads.NewScanner(r)
	case GFF:
		src = gffreads.NewScanner(r)
	default:
		return bed.NewScanner(r, opts.BED)
	}
	if opts.BED.UseForceScore {
		src = &scoredSource{src, opts.BED.ForceScore}
	}
	return src
}

// scoredSource overrides the score of every interval.
type scoredSource struct {
	interval.Source
	score float64
}

func (s *scoredSource) Scan(iv *interval.Interval) bool {
	if !s.Source.Scan(iv) {
		return false
	}
	iv.Score, iv.HasScore = s.score, true
	return true
}

// File is a Source backed by an open file.
type File struct {
	interval.Source
	in *util.Input
}

// Open opens path ("-" for stdin) and returns a Source over it.
// Compressed inputs are decompressed transparently.
func Open(ctx context.Context, path string, opts Opts) (*File, error) {
	in, err := util.OpenInput(ctx, path)
	if err != nil {
		return nil, err
	}
	if opts.Format == Auto {
		opts.Format = FormatForPath(path)
	}
	return &File{Source: New(in.Reader(), opts), in: in}, nil
}

// Close closes the underlying file.
func (f *File) Close(ctx context.Context) error {
	return f.in.Close(ctx)
}
