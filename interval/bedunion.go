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
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/seqfiles/util"
	"github.com/klauspost/compress/gzip"
)

// NewBEDOpts defines behavior of this package's BED-loading function(s).
type NewBEDOpts struct {
	// Invert causes the complement of the interval-union to be returned.  The
	// complement extends down to position -1 at the beginning of each
	// chromosome, and currently 2^31 - 2 inclusive at the end.  Only the
	// chromosomes mentioned in the BED file are included.  (A single empty
	// interval qualifies as a "mention" for this purpose.)
	Invert bool
	// OneBasedInput interprets the BED interval boundaries as one-based [start,
	// end] instead of the usual zero-based [start, end).
	OneBasedInput bool
}

// searchPosType returns the index of x in a[], or the position where x would
// be inserted if x isn't in a (this could be len(a)).  It's exactly the same
// as sort.SearchInt(), except for PosType.
func searchPosType(a []PosType, x PosType) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// fwdsearchPosType checks a[idx], then a[idx + 1], then a[idx + 3], then
// a[idx + 7], etc., and then uses binary search to finish the job.  It's
// usually a better choice than searchPosType when iterating.
func fwdsearchPosType(a []PosType, x PosType, idx int) int {
	nextIncr := 1
	startIdx := idx
	endIdx := len(a)
	for idx < endIdx {
		if a[idx] >= x {
			endIdx = idx
			break
		}
		startIdx = idx + 1
		idx += nextIncr
		nextIncr *= 2
	}
	for startIdx < endIdx {
		midIdx := int(uint(startIdx+endIdx) >> 1)
		if a[midIdx] >= x {
			endIdx = midIdx
		} else {
			startIdx = midIdx + 1
		}
	}
	return startIdx
}

// BEDUnion is implemented as a collection of length-2N sequences, where N is
// the number of intervals, the (0-based) start position of the interval #k
// (numbering from zero) is in element [2k] and the end position is in element
// [2k+1], and the intervals are stored in increasing order.
type BEDUnion struct {
	// nameMap is a chromosome-keyed map with disjoint-interval-set values.
	// Always initialized.
	nameMap map[string]([]PosType)
	// lastChrIntervals points to the disjoint-interval-set for the most recently
	// queried chromosome.
	lastChrIntervals []PosType
	// lastChrName is the name of the last queried chromosome.  If it's
	// nonempty, it must be in sync with lastChrIntervals.
	lastChrName string
	// lastPosPlus1 is 1 plus the last spot-queried position.
	lastPosPlus1 PosType
	// lastIdx is searchPosType(lastChrIntervals, lastPosPlus1).  Cached to
	// accelerate sequential queries.
	lastIdx int
	// isSequential is true if all Contains queries since the last chromosome
	// change have been in order of nondecreasing position.
	isSequential bool
}

func (u *BEDUnion) chrIntervals(chrName string) []PosType {
	if chrName != u.lastChrName {
		u.lastChrName = chrName
		u.lastChrIntervals = u.nameMap[chrName]
		u.isSequential = false
	}
	return u.lastChrIntervals
}

// Contains checks whether the (0-based) interval [pos, pos+1) is contained
// within the BEDUnion.
func (u *BEDUnion) Contains(chrName string, pos PosType) bool {
	posPlus1 := pos + 1
	chrIntervals := u.chrIntervals(chrName)
	if chrIntervals == nil {
		return false
	}
	if u.isSequential && posPlus1 >= u.lastPosPlus1 {
		u.lastIdx = fwdsearchPosType(chrIntervals, posPlus1, u.lastIdx)
	} else {
		u.lastIdx = searchPosType(chrIntervals, posPlus1)
		u.isSequential = true
	}
	u.lastPosPlus1 = posPlus1
	return u.lastIdx&1 == 1
}

// Intersects checks whether [start, end) shares at least one base with the
// BEDUnion.  An empty interval is treated as the single base at start.
func (u *BEDUnion) Intersects(chrName string, start, end PosType) bool {
	if end <= start {
		return u.Contains(chrName, start)
	}
	chrIntervals := u.chrIntervals(chrName)
	if chrIntervals == nil {
		return false
	}
	idx := searchPosType(chrIntervals, start+1)
	if idx&1 == 1 {
		return true
	}
	return (idx != len(chrIntervals)) && (chrIntervals[idx] < end)
}

// NChrom returns the number of chromosomes mentioned by the BEDUnion.
func (u *BEDUnion) NChrom() int {
	return len(u.nameMap)
}

func initBEDUnion() (bedUnion BEDUnion) {
	bedUnion.nameMap = make(map[string]([]PosType))
	return
}

// unionBuilder accumulates sorted intervals chromosome by chromosome, merging
// touching/overlapping intervals and eliminating empty ones.
type unionBuilder struct {
	u                  *BEDUnion
	invert             bool
	prevChr            string
	prevStart, prevEnd PosType
	chrIntervals       []PosType
	totBases           int
}

func (b *unionBuilder) finishChr() {
	if b.prevChr == "" {
		return
	}
	if b.prevEnd != -1 {
		b.chrIntervals = append(b.chrIntervals, b.prevStart, b.prevEnd)
	}
	if b.invert {
		b.chrIntervals = append(b.chrIntervals, PosTypeMax)
	}
	b.u.nameMap[b.prevChr] = b.chrIntervals
}

// add incorporates [start, end) on chr; chr may alias a reusable buffer, so it
// is only copied when a new chromosome starts.
func (b *unionBuilder) add(chr []byte, start, end PosType) error {
	if b.prevChr != gunsafe.BytesToString(chr) {
		b.finishChr()
		// Make a full heap copy, since this needs to persist as a map key.
		b.prevChr = string(chr)
		if _, found := b.u.nameMap[b.prevChr]; found {
			return fmt.Errorf("unsorted input (split chromosome %v)", b.prevChr)
		}
		b.chrIntervals = []PosType{}
		if b.invert {
			b.chrIntervals = append(b.chrIntervals, -1)
		}
		if end == start {
			// Distinguish between 'mentioned' chromosomes without any overlapping
			// bases and unmentioned chromosomes.
			b.prevStart = -1
			b.prevEnd = -1
		} else {
			b.prevStart = start
			b.prevEnd = end
			b.totBases += int(end - start)
		}
		return nil
	}
	if end == start {
		return nil
	}
	if b.prevEnd == -1 {
		b.prevStart = start
		b.prevEnd = end
		b.totBases += int(end - start)
		return nil
	}
	if start > b.prevEnd {
		// New interval doesn't overlap previous one, so we can save the previous
		// one.
		b.chrIntervals = append(b.chrIntervals, b.prevStart, b.prevEnd)
		b.prevStart = start
		b.prevEnd = end
		b.totBases += int(end - start)
		return nil
	}
	if start < b.prevStart {
		return fmt.Errorf("unsorted input")
	}
	// Intervals overlap, merge them.
	if end > b.prevEnd {
		b.totBases += int(end - b.prevEnd)
		b.prevEnd = end
	}
	return nil
}

func scanBEDUnion(scanner *bufio.Scanner, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	bedUnion = initBEDUnion()
	builder := unionBuilder{u: &bedUnion, invert: opts.Invert}

	var startSubtract int
	if opts.OneBasedInput {
		startSubtract++
	}

	var tokens [3][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		// Bytes() does not allocate, unlike Text().  gunsafe.BytesToString is
		// only applied to short-lived strconv arguments.
		curLine := scanner.Bytes()
		nToken := util.GetTokens(tokens[:], curLine)
		if nToken == 0 || util.IsHeaderToken(tokens[0]) {
			continue
		}
		if nToken != 3 {
			err = fmt.Errorf("interval.scanBEDUnion: line %d has fewer tokens than expected", lineIdx)
			return
		}

		var parsedStart int
		if parsedStart, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
			err = fmt.Errorf("interval.scanBEDUnion: line %d: %v", lineIdx, err)
			return
		}
		parsedStart -= startSubtract
		if parsedStart < 0 {
			err = fmt.Errorf("interval.scanBEDUnion: negative start coordinate %s on line %d", tokens[1], lineIdx)
			return
		}
		var parsedEnd int
		if parsedEnd, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
			err = fmt.Errorf("interval.scanBEDUnion: line %d: %v", lineIdx, err)
			return
		}
		if (parsedEnd < parsedStart) || (parsedEnd >= PosTypeMax) {
			err = fmt.Errorf("interval.scanBEDUnion: invalid coordinate pair on line %d", lineIdx)
			return
		}
		if err = builder.add(tokens[0], PosType(parsedStart), PosType(parsedEnd)); err != nil {
			err = fmt.Errorf("interval.scanBEDUnion: %v on line %d", err, lineIdx)
			return
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}
	builder.finishChr()
	log.Printf("BED loaded, %d base(s) covered.\n", builder.totBases)
	return
}

// NewBEDUnion loads just the intervals from a sorted (by first coordinate)
// interval-BED, merging touching/overlapping intervals and eliminating empty
// ones in the process.  A BEDUnion is returned.
func NewBEDUnion(reader io.Reader, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	// Note that Scanner does not handle very long lines unless we specify an
	// adequate buffer size in advance; it does not auto-resize.
	// Shouldn't matter for BED files, though.
	scanner := bufio.NewScanner(reader)
	return scanBEDUnion(scanner, opts)
}

// NewBEDUnionFromPath is a wrapper for NewBEDUnion that takes a path instead
// of an io.Reader.
func NewBEDUnionFromPath(path string, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, infile, &err)
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return NewBEDUnion(reader, opts)
}

// NewBEDUnionFromIntervals initializes a BEDUnion from intervals sorted by
// chromosome and start.  This ignores opts.OneBasedInput, since Interval
// coordinates are defined to be zero-based.
func NewBEDUnionFromIntervals(ivs []Interval, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	bedUnion = initBEDUnion()
	builder := unionBuilder{u: &bedUnion, invert: opts.Invert}
	for _, iv := range ivs {
		if iv.Start < 0 {
			err = fmt.Errorf("interval.NewBEDUnionFromIntervals: negative start coordinate")
			return
		}
		if (iv.End < iv.Start) || (iv.End >= PosTypeMax) {
			err = fmt.Errorf("interval.NewBEDUnionFromIntervals: invalid coordinate pair [%d, %d)", iv.Start, iv.End)
			return
		}
		if err = builder.add([]byte(iv.Chrom), iv.Start, iv.End); err != nil {
			err = fmt.Errorf("interval.NewBEDUnionFromIntervals: %v", err)
			return
		}
	}
	builder.finishChr()
	return
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a 0-based interval.  The interval [0, PosTypeMax - 1) is returned
// if there is no positional restriction.
func ParseRegionString(region string) (result Interval, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.IndexByte(region, ':')
	if colonPos == -1 {
		result.Chrom = region
		result.Start = 0
		result.End = PosTypeMax - 1
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.Chrom = region[0:colonPos]
	rangeStr := region[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 32); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr)
			return
		}
		result.Start = PosType(pos1 - 1)
		result.End = PosType(pos1)
		return
	}
	start1Str := rangeStr[:dashPos]
	endStr := rangeStr[dashPos+1:]
	var start1 int
	if start1, err = strconv.Atoi(start1Str); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", start1Str)
		return
	}
	var end0 int
	if end0, err = strconv.Atoi(endStr); err != nil {
		return
	}
	// Prohibit end0 == PosTypeMax so that the interval-array is guaranteed to
	// contain no repeats.
	if end0 < start1 || end0 >= PosTypeMax {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start = PosType(start1 - 1)
	result.End = PosType(end0)
	return
}

// Clone returns a new BEDUnion which shares the interval set, but has its own
// search state.
func (u *BEDUnion) Clone() (bedUnion BEDUnion) {
	bedUnion.nameMap = u.nameMap
	return
}

// MaskedSource passes through the intervals of another Source that intersect
// a BEDUnion, or, in exclude mode, the ones that don't.
type MaskedSource struct {
	src     Source
	mask    BEDUnion
	exclude bool
}

// NewMaskedSource returns a filtered view of src.  The mask's search state is
// cloned, so one BEDUnion may back several MaskedSources.
func NewMaskedSource(src Source, mask *BEDUnion, exclude bool) *MaskedSource {
	return &MaskedSource{src: src, mask: mask.Clone(), exclude: exclude}
}

// Scan implements Source.
func (m *MaskedSource) Scan(iv *Interval) bool {
	for m.src.Scan(iv) {
		if m.mask.Intersects(iv.Chrom, iv.Start, iv.End) != m.exclude {
			return true
		}
	}
	return false
}

// Err implements Source.
func (m *MaskedSource) Err() error {
	return m.src.Err()
}

// MaskOpts restricts a Source to a region string and/or a BED file of
// regions.
type MaskOpts struct {
	// Region keeps intervals intersecting a region string, see
	// ParseRegionString.
	Region string
	// BEDPath keeps intervals intersecting the BED file's intervals, or, with
	// Exclude set, drops them.
	BEDPath string
	Exclude bool
}

// Apply wraps src with the configured masks.  src is returned unchanged if no
// mask is configured.
func (o MaskOpts) Apply(src Source) (Source, error) {
	if o.Region != "" {
		region, err := ParseRegionString(o.Region)
		if err != nil {
			return nil, err
		}
		u, err := NewBEDUnionFromIntervals([]Interval{region}, NewBEDOpts{})
		if err != nil {
			return nil, err
		}
		src = NewMaskedSource(src, &u, false)
	}
	if o.BEDPath != "" {
		u, err := NewBEDUnionFromPath(o.BEDPath, NewBEDOpts{})
		if err != nil {
			return nil, err
		}
		log.Debug.Printf("%s: mask spans %d chromosome(s)", o.BEDPath, u.NChrom())
		src = NewMaskedSource(src, &u, o.Exclude)
	}
	return src, nil
}
