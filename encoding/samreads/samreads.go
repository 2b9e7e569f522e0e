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

// Package samreads exposes the mapped reads of a SAM text file as intervals.
package samreads

import (
	"bufio"
	"io"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/seqfiles/interval"
	"github.com/pkg/errors"
)

const maxLineLen = 16 << 20

// Scanner reads SAM records and yields one interval per mapped read.  It
// implements interval.Source.
//
// Header lines are skipped, so the input need not carry an @SQ dictionary.
// Unmapped reads are dropped.  A read covers [POS-1, POS-1+len(SEQ)); reads
// whose SEQ is "*" fall back to the CIGAR-derived reference end.
type Scanner struct {
	b         *bufio.Scanner
	rec       sam.Record
	lineIdx   int
	err       error
	lastChrom string
}

// NewScanner creates a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineLen)
	return &Scanner{b: b}
}

// Scan reads the next mapped read into iv.
func (s *Scanner) Scan(iv *interval.Interval) bool {
	if s.err != nil {
		return false
	}
	for s.b.Scan() {
		s.lineIdx++
		line := s.b.Bytes()
		if len(line) == 0 || line[0] == '@' {
			continue
		}
		s.rec = sam.Record{}
		if err := s.rec.UnmarshalSAM(nil, line); err != nil {
			s.err = errors.Wrapf(err, "samreads.Scanner: line %d", s.lineIdx)
			return false
		}
		if s.rec.Flags&sam.Unmapped != 0 || s.rec.Ref == nil || s.rec.Pos < 0 {
			continue
		}
		s.fill(iv)
		return true
	}
	s.err = s.b.Err()
	return false
}

func (s *Scanner) fill(iv *interval.Interval) {
	rec := &s.rec
	if name := rec.Ref.Name(); name != s.lastChrom {
		s.lastChrom = name
	}
	end := rec.Pos + rec.Seq.Length
	if rec.Seq.Length == 0 {
		end = rec.End()
	}
	strand := interval.StrandFwd
	if rec.Flags&sam.Reverse != 0 {
		strand = interval.StrandRev
	}
	*iv = interval.Interval{
		Chrom:  s.lastChrom,
		Start:  interval.PosType(rec.Pos),
		End:    interval.PosType(end),
		Name:   rec.Name,
		Strand: strand,
	}
}

// Blocks appends to dst the reference spans of the aligned (M, = and X)
// blocks of the read returned by the last Scan, and reports whether its CIGAR
// skips reference bases (N).  A read without a CIGAR is one block covering
// the interval Scan returned.
func (s *Scanner) Blocks(dst []interval.Interval) (blocks []interval.Interval, spliced bool) {
	rec := &s.rec
	strand := interval.StrandFwd
	if rec.Flags&sam.Reverse != 0 {
		strand = interval.StrandRev
	}
	if len(rec.Cigar) == 0 {
		var iv interval.Interval
		s.fill(&iv)
		return append(dst, iv), false
	}
	first, pos := len(dst), rec.Pos
	for _, op := range rec.Cigar {
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			end := pos + op.Len()
			if n := len(dst); n > first && dst[n-1].End == interval.PosType(pos) {
				// Adjacent M/=/X operations form one block.
				dst[n-1].End = interval.PosType(end)
			} else {
				dst = append(dst, interval.Interval{
					Chrom:  s.lastChrom,
					Start:  interval.PosType(pos),
					End:    interval.PosType(end),
					Name:   rec.Name,
					Strand: strand,
				})
			}
			pos = end
		case sam.CigarSkipped:
			spliced = true
			pos += op.Len()
		case sam.CigarDeletion:
			pos += op.Len()
		}
	}
	return dst, spliced
}

// Err returns the first error encountered, if any.
func (s *Scanner) Err() error {
	return s.err
}
