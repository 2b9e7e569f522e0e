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

// Package bed reads and writes BED interval files.
package bed

import (
	"bufio"
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/seqfiles/util"
	"github.com/pkg/errors"
)

// maxLineLen bounds the length of a single BED line.
const maxLineLen = 16 << 20

// Opts controls how a Scanner interprets the optional BED columns.
type Opts struct {
	// BEDGraph treats the fourth column as the score instead of the name.
	BEDGraph bool
	// ForceScore, when UseForceScore is set, replaces every record's score.
	ForceScore    float64
	UseForceScore bool
	// RequireScore makes a record without a score column an error.
	RequireScore bool
}

// DefaultOpts reads BED3-BED6 records as-is.
var DefaultOpts = Opts{}

// Scanner reads BED records.  It implements interval.Source.  A sample usage:
//
//	sc := bed.NewScanner(r, bed.DefaultOpts)
//	var iv interval.Interval
//	for sc.Scan(&iv) {
//	  ...
//	}
//	if err := sc.Err(); err != nil {
//	  ...
//	}
//
// Lines starting with "track", "browser" or "#" are skipped, as are blank
// lines.
type Scanner struct {
	b       *bufio.Scanner
	opts    Opts
	lineIdx int
	err     error
	tokens  [6][]byte
	// lastChrom is reused while the chromosome doesn't change, so sorted input
	// allocates one string per chromosome.
	lastChrom string
}

// NewScanner creates a BED scanner reading from r.
func NewScanner(r io.Reader, opts Opts) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineLen)
	return &Scanner{b: b, opts: opts}
}

// Scan reads the next record into iv.  It returns false at EOF or on error.
func (s *Scanner) Scan(iv *interval.Interval) bool {
	if s.err != nil {
		return false
	}
	for s.b.Scan() {
		s.lineIdx++
		line := s.b.Bytes()
		nToken := util.GetTokens(s.tokens[:], line)
		if nToken == 0 || util.IsHeaderToken(s.tokens[0]) {
			continue
		}
		if s.err = s.parse(iv, nToken); s.err != nil {
			return false
		}
		return true
	}
	s.err = s.b.Err()
	return false
}

func (s *Scanner) parse(iv *interval.Interval, nToken int) error {
	if nToken < 3 {
		return errors.Errorf("bed.Scanner: line %d has fewer than 3 columns", s.lineIdx)
	}
	chrom := s.tokens[0]
	if string(chrom) != s.lastChrom {
		s.lastChrom = string(chrom)
	}
	start, err := s.parsePos(s.tokens[1])
	if err != nil {
		return err
	}
	end, err := s.parsePos(s.tokens[2])
	if err != nil {
		return err
	}
	if start > end {
		return errors.Errorf("bed.Scanner: line %d has start %d > end %d", s.lineIdx, start, end)
	}
	*iv = interval.Interval{Chrom: s.lastChrom, Start: start, End: end}

	scoreCol := 4
	if s.opts.BEDGraph {
		scoreCol = 3
	} else if nToken > 3 && !isDot(s.tokens[3]) {
		iv.Name = string(s.tokens[3])
	}
	if nToken > scoreCol && !isDot(s.tokens[scoreCol]) {
		score, err := strconv.ParseFloat(gunsafe.BytesToString(s.tokens[scoreCol]), 64)
		if err != nil {
			return errors.Wrapf(err, "bed.Scanner: line %d: invalid score", s.lineIdx)
		}
		iv.Score, iv.HasScore = score, true
	}
	if s.opts.UseForceScore {
		iv.Score, iv.HasScore = s.opts.ForceScore, true
	} else if s.opts.RequireScore && !iv.HasScore {
		return errors.Errorf("bed.Scanner: line %d has no score", s.lineIdx)
	}
	if !s.opts.BEDGraph && nToken > 5 {
		if iv.Strand, err = interval.ParseStrand(gunsafe.BytesToString(s.tokens[5])); err != nil {
			return errors.Wrapf(err, "bed.Scanner: line %d", s.lineIdx)
		}
	}
	return nil
}

func (s *Scanner) parsePos(tok []byte) (interval.PosType, error) {
	pos, err := strconv.ParseInt(gunsafe.BytesToString(tok), 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "bed.Scanner: line %d: invalid coordinate", s.lineIdx)
	}
	if pos < 0 {
		return 0, errors.Errorf("bed.Scanner: line %d has negative coordinate %d", s.lineIdx, pos)
	}
	return interval.PosType(pos), nil
}

// Err returns the first error encountered, if any.
func (s *Scanner) Err() error {
	return s.err
}

// Line returns the number of lines consumed so far.
func (s *Scanner) Line() int {
	return s.lineIdx
}

func isDot(tok []byte) bool {
	return len(tok) == 1 && tok[0] == '.'
}

// Format selects the columns written by a Writer.
type Format int

const (
	// BED3 writes chrom, start, end.
	BED3 Format = iota
	// BEDGraph writes chrom, start, end, score.
	BEDGraph
	// BED4 writes chrom, start, end, name.
	BED4
	// BED6 writes chrom, start, end, name, score, strand.
	BED6
)

// ParseFormat converts a command-line format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "bed3":
		return BED3, nil
	case "bedgraph":
		return BEDGraph, nil
	case "bed4":
		return BED4, nil
	case "bed6", "bed":
		return BED6, nil
	}
	return BED3, errors.Errorf("bed.ParseFormat: unknown format %q", name)
}

// Writer writes intervals as BED lines.
type Writer struct {
	tsvw   *tsv.Writer
	format Format
	buf    []byte
}

// NewWriter creates a Writer emitting format to w.
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{tsvw: tsv.NewWriter(w), format: format}
}

// WriteTrackLine writes a "track" header line with the given attributes.
func (w *Writer) WriteTrackLine(info string) error {
	if info == "" {
		w.tsvw.WriteString("track")
	} else {
		w.tsvw.WriteString("track " + info)
	}
	return w.tsvw.EndLine()
}

// Write writes one record.  Absent names are written as "."; absent scores
// as 0.
func (w *Writer) Write(iv *interval.Interval) error {
	w.tsvw.WriteString(iv.Chrom)
	w.tsvw.WriteUint32(uint32(iv.Start))
	w.tsvw.WriteUint32(uint32(iv.End))
	switch w.format {
	case BEDGraph:
		w.writeScore(iv)
	case BED4:
		w.writeName(iv)
	case BED6:
		w.writeName(iv)
		w.writeScore(iv)
		w.tsvw.WriteByte(iv.Strand.Byte())
	}
	return w.tsvw.EndLine()
}

func (w *Writer) writeName(iv *interval.Interval) {
	if iv.Name == "" {
		w.tsvw.WriteByte('.')
		return
	}
	w.tsvw.WriteString(iv.Name)
}

func (w *Writer) writeScore(iv *interval.Interval) {
	if !iv.HasScore {
		w.tsvw.WriteByte('0')
		return
	}
	w.buf = FormatScore(w.buf[:0], iv.Score)
	w.tsvw.WriteString(gunsafe.BytesToString(w.buf))
}

// Flush flushes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.tsvw.Flush()
}

// FormatScore appends the shortest decimal representation of v to dst.
func FormatScore(dst []byte, v float64) []byte {
	return strconv.AppendFloat(dst, v, 'g', -1, 64)
}

// Copy writes every interval of src to w and flushes it.  It returns the
// number of records written.
func Copy(w *Writer, src interval.Source) (n int, err error) {
	var iv interval.Interval
	for src.Scan(&iv) {
		if err = w.Write(&iv); err != nil {
			return n, err
		}
		n++
	}
	if err = src.Err(); err != nil {
		return n, err
	}
	return n, w.Flush()
}
