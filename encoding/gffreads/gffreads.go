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

// Package gffreads exposes the features of a GFF file as intervals, for
// example the per-probe log ratios of a tiling-array experiment.
package gffreads

import (
	"io"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"
	"github.com/grailbio/seqfiles/interval"
	"github.com/pkg/errors"
)

// Scanner reads GFF features as intervals.  It implements interval.Source.
//
// Coordinates are converted to the half-open, 0-based convention.  The
// interval name is taken from the Name attribute, or the ID attribute when
// there is no Name.
type Scanner struct {
	sc    *featio.Scanner
	nFeat int
	err   error
}

// NewScanner creates a Scanner reading GFF from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{sc: featio.NewScanner(gff.NewReader(r))}
}

// Scan reads the next feature into iv.
func (s *Scanner) Scan(iv *interval.Interval) bool {
	if s.err != nil {
		return false
	}
	if !s.sc.Next() {
		if err := s.sc.Error(); err != nil {
			s.err = errors.Wrapf(err, "gffreads.Scanner: after feature %d", s.nFeat)
		}
		return false
	}
	s.nFeat++
	f := s.sc.Feat().(*gff.Feature)
	if f.FeatStart < 0 || f.FeatStart > f.FeatEnd || f.FeatEnd > interval.PosTypeMax {
		s.err = errors.Errorf("gffreads.Scanner: feature %d has invalid range [%d, %d)", s.nFeat, f.FeatStart, f.FeatEnd)
		return false
	}
	*iv = interval.Interval{
		Chrom:  f.SeqName,
		Start:  interval.PosType(f.FeatStart),
		End:    interval.PosType(f.FeatEnd),
		Name:   f.FeatAttributes.Get("Name"),
		Strand: strandFromSeq(f.FeatStrand),
	}
	if iv.Name == "" {
		iv.Name = f.FeatAttributes.Get("ID")
	}
	if f.FeatScore != nil {
		iv.Score, iv.HasScore = *f.FeatScore, true
	}
	return true
}

// Err returns the first error encountered, if any.
func (s *Scanner) Err() error {
	return s.err
}

func strandFromSeq(s seq.Strand) interval.Strand {
	switch s {
	case seq.Plus:
		return interval.StrandFwd
	case seq.Minus:
		return interval.StrandRev
	}
	return interval.StrandNone
}
