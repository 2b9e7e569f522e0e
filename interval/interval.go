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

package interval

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// PosType is the integer type used to represent genomic positions.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// Strand is the strand an interval lies on.
type Strand int8

const (
	// StrandNone means the strand is unknown or irrelevant.
	StrandNone Strand = iota
	// StrandFwd is the + strand.
	StrandFwd
	// StrandRev is the - strand.
	StrandRev
)

// StrandToASCIITable is the Strand -> ASCII mapping.
var StrandToASCIITable = [...]byte{'.', '+', '-'}

// Byte returns the one-character BED rendering of s.
func (s Strand) Byte() byte {
	return StrandToASCIITable[s]
}

func (s Strand) String() string {
	return string(StrandToASCIITable[s])
}

// ParseStrand interprets a BED/GFF strand column.
func ParseStrand(col string) (Strand, error) {
	switch col {
	case "+":
		return StrandFwd, nil
	case "-":
		return StrandRev, nil
	case ".", "":
		return StrandNone, nil
	}
	return StrandNone, fmt.Errorf("interval.ParseStrand: invalid strand %q", col)
}

// Interval is a scored, stranded genomic interval [Start, End) on Chrom.
type Interval struct {
	Chrom string
	Start PosType
	End   PosType
	// Name is empty when the record had no name column, or it was ".".
	Name string
	// Score is only meaningful when HasScore is set.
	Score    float64
	HasScore bool
	Strand   Strand
}

// Len returns the number of bases covered by iv.
func (iv *Interval) Len() PosType {
	return iv.End - iv.Start
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s:%d-%d", iv.Chrom, iv.Start, iv.End)
}

// Source is a stream of intervals.  Scan fills iv with the next interval and
// returns true, or returns false once the stream is exhausted or has failed.
// Once Scan returns false it never returns true again, and Err tells whether
// the stream ended because of an error.
//
// Sources are single-pass and not threadsafe.
type Source interface {
	Scan(iv *Interval) bool
	Err() error
}

// SliceSource is a Source over an in-memory slice of intervals.
type SliceSource struct {
	ivs []Interval
	idx int
}

// NewSliceSource returns a Source yielding ivs in order.
func NewSliceSource(ivs []Interval) *SliceSource {
	return &SliceSource{ivs: ivs}
}

// Scan implements Source.
func (s *SliceSource) Scan(iv *Interval) bool {
	if s.idx >= len(s.ivs) {
		return false
	}
	*iv = s.ivs[s.idx]
	s.idx++
	return true
}

// Err implements Source.  A SliceSource never fails.
func (s *SliceSource) Err() error {
	return nil
}

// ReadAll drains src into a slice.
func ReadAll(src Source) ([]Interval, error) {
	var ivs []Interval
	var iv Interval
	for src.Scan(&iv) {
		ivs = append(ivs, iv)
	}
	return ivs, src.Err()
}

// ErrUnsorted is returned (possibly wrapped) when a stream is not sorted by
// chromosome, then start position.
var ErrUnsorted = errors.New("unsorted input")

// SortChecker verifies that a stream of intervals is sorted by (chromosome,
// start).  Chromosomes may appear in any order, but each must form a single
// contiguous block.  The zero value is ready to use.
type SortChecker struct {
	prevChrom string
	prevStart PosType
	seen      map[string]struct{}
}

// Check returns an error wrapping ErrUnsorted if iv cannot follow the
// previously checked interval.
func (c *SortChecker) Check(iv *Interval) error {
	if c.seen != nil && iv.Chrom == c.prevChrom {
		if iv.Start < c.prevStart {
			return errors.Wrapf(ErrUnsorted, "%s:%d follows %s:%d", iv.Chrom, iv.Start, c.prevChrom, c.prevStart)
		}
		c.prevStart = iv.Start
		return nil
	}
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	if _, found := c.seen[iv.Chrom]; found {
		return errors.Wrapf(ErrUnsorted, "split chromosome %s", iv.Chrom)
	}
	c.seen[iv.Chrom] = struct{}{}
	c.prevChrom = iv.Chrom
	c.prevStart = iv.Start
	return nil
}

// CheckedSource wraps a Source, failing with ErrUnsorted as soon as an
// out-of-order interval is seen.
type CheckedSource struct {
	src     Source
	checker SortChecker
	err     error
}

// NewCheckedSource returns a sortedness-checking view of src.
func NewCheckedSource(src Source) *CheckedSource {
	return &CheckedSource{src: src}
}

// Scan implements Source.
func (s *CheckedSource) Scan(iv *Interval) bool {
	if s.err != nil || !s.src.Scan(iv) {
		return false
	}
	if s.err = s.checker.Check(iv); s.err != nil {
		return false
	}
	return true
}

// Err implements Source.
func (s *CheckedSource) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.src.Err()
}

// Flanks returns the regions flanking iv: left bases ending buffer bases
// before iv.Start, and right bases starting buffer bases after iv.End.
// Coordinates are clipped at zero; ok reports whether the left flank is
// non-empty after clipping.
func Flanks(iv Interval, left, right, buffer PosType) (leftFlank, rightFlank Interval, ok bool) {
	leftFlank = Interval{Chrom: iv.Chrom, Strand: iv.Strand, Name: iv.Name}
	rightFlank = leftFlank
	leftFlank.Start = clip(int64(iv.Start) - int64(left) - int64(buffer))
	leftFlank.End = clip(int64(iv.Start) - int64(buffer))
	rightFlank.Start = clip(int64(iv.End) + int64(buffer))
	rightFlank.End = clip(int64(iv.End) + int64(right) + int64(buffer))
	return leftFlank, rightFlank, leftFlank.End > leftFlank.Start
}

func clip(pos int64) PosType {
	if pos < 0 {
		return 0
	}
	if pos > PosTypeMax {
		return PosTypeMax
	}
	return PosType(pos)
}
