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

// Package bowtie reads the default (non-SAM) alignment output of the bowtie
// short-read aligner.
//
// Each line has the tab-separated columns
//
//   read-name strand reference offset sequence qualities other-alignments [mismatches]
//
// where offset is 0-based.  The aligned span is [offset, offset+len(sequence)).
package bowtie

import (
	"bufio"
	"io"
	"strconv"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/seqfiles/util"
	"github.com/pkg/errors"
)

const (
	colName = iota
	colStrand
	colRef
	colOffset
	colSeq
	nRequiredCols
)

const maxLineLen = 1 << 20

// Scanner reads bowtie alignments as intervals.  It implements
// interval.Source; every interval carries the read name and strand, and no
// score.
type Scanner struct {
	b         *bufio.Scanner
	lineIdx   int
	err       error
	tokens    [nRequiredCols][]byte
	lastChrom string
}

// NewScanner creates a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineLen)
	return &Scanner{b: b}
}

// Scan reads the next alignment into iv.
func (s *Scanner) Scan(iv *interval.Interval) bool {
	if s.err != nil {
		return false
	}
	for s.b.Scan() {
		s.lineIdx++
		nToken := util.GetTabTokens(s.tokens[:], s.b.Bytes())
		if nToken == 0 {
			continue
		}
		if nToken < nRequiredCols {
			s.err = errors.Errorf("bowtie.Scanner: line %d has %d column(s), expected at least %d", s.lineIdx, nToken, nRequiredCols)
			return false
		}
		if s.err = s.parse(iv); s.err != nil {
			return false
		}
		return true
	}
	s.err = s.b.Err()
	return false
}

func (s *Scanner) parse(iv *interval.Interval) error {
	strand, err := interval.ParseStrand(gunsafe.BytesToString(s.tokens[colStrand]))
	if err != nil {
		return errors.Wrapf(err, "bowtie.Scanner: line %d", s.lineIdx)
	}
	offset, err := strconv.ParseInt(gunsafe.BytesToString(s.tokens[colOffset]), 10, 32)
	if err != nil {
		return errors.Wrapf(err, "bowtie.Scanner: line %d: invalid offset", s.lineIdx)
	}
	if offset < 0 {
		return errors.Errorf("bowtie.Scanner: line %d has negative offset %d", s.lineIdx, offset)
	}
	end := offset + int64(len(s.tokens[colSeq]))
	if end > interval.PosTypeMax {
		return errors.Errorf("bowtie.Scanner: line %d: alignment end %d out of range", s.lineIdx, end)
	}
	if ref := s.tokens[colRef]; string(ref) != s.lastChrom {
		s.lastChrom = string(ref)
	}
	*iv = interval.Interval{
		Chrom:  s.lastChrom,
		Start:  interval.PosType(offset),
		End:    interval.PosType(end),
		Name:   string(s.tokens[colName]),
		Strand: strand,
	}
	return nil
}

// Err returns the first error encountered, if any.
func (s *Scanner) Err() error {
	return s.err
}
