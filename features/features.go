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

// Package features counts reads falling in annotated genomic features
// (genes, exons, introns, ...).
package features

import (
	"io"
	"sort"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/store/interval"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	siv "github.com/grailbio/seqfiles/interval"
	"github.com/pkg/errors"
)

// DefaultClasses are the GFF feature types indexed by default.
var DefaultClasses = []string{"gene", "exon", "intron"}

// Derived count categories, alongside one per feature class.
const (
	// Total counts every read on an annotated chromosome.
	Total = "total"
	// Empty counts reads overlapping no gene.
	Empty = "empty"
	// ExonAndIntron counts reads overlapping both an exon and an intron.
	ExonAndIntron = "exon-and-intron"
	// ExonOnly counts reads overlapping exactly a gene and an exon.
	ExonOnly = "exon-only"
	// IntronOnly counts reads overlapping exactly a gene and an intron.
	IntronOnly = "intron-only"
	// Spliced counts reads whose alignment skips reference bases.
	Spliced = "spliced"
)

// feature is a tree element.  Ranges are half-open.
type feature struct {
	id         uintptr
	start, end int
	class      string
}

func (f feature) Overlap(b interval.IntRange) bool {
	return f.start < b.End && b.Start < f.end
}

func (f feature) ID() uintptr { return f.id }

func (f feature) Range() interval.IntRange {
	return interval.IntRange{Start: f.start, End: f.end}
}

// query is a half-open read span.
type query struct {
	start, end int
}

func (q query) Overlap(b interval.IntRange) bool {
	return q.start < b.End && b.Start < q.end
}

// Index holds annotated features for overlap queries.  Add features, call
// Build, then query.
type Index struct {
	trees  map[string]*interval.IntTree
	nextID uintptr
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{trees: make(map[string]*interval.IntTree)}
}

// Add inserts a feature of the given class covering [start, end) on chrom.
func (x *Index) Add(chrom string, start, end int, class string) error {
	if start >= end {
		return errors.Errorf("features.Index: empty feature %s:%d-%d", chrom, start, end)
	}
	tree, ok := x.trees[chrom]
	if !ok {
		tree = &interval.IntTree{}
		x.trees[chrom] = tree
	}
	x.nextID++
	return tree.Insert(feature{id: x.nextID, start: start, end: end, class: class}, true)
}

// Build finalizes the index after the last Add.
func (x *Index) Build() {
	for _, tree := range x.trees {
		tree.AdjustRanges()
	}
}

// Len returns the number of indexed features.
func (x *Index) Len() int {
	return int(x.nextID)
}

// LoadGFF adds the features of the GFF read from r whose type is in classes.
func (x *Index) LoadGFF(r io.Reader, classes []string) error {
	keep := make(map[string]bool, len(classes))
	for _, c := range classes {
		keep[c] = true
	}
	sc := featio.NewScanner(gff.NewReader(r))
	for sc.Next() {
		f := sc.Feat().(*gff.Feature)
		if !keep[f.Feature] || f.FeatStart >= f.FeatEnd {
			continue
		}
		if err := x.Add(f.SeqName, f.FeatStart, f.FeatEnd, f.Feature); err != nil {
			return err
		}
	}
	if err := sc.Error(); err != nil {
		return errors.Wrap(err, "features.LoadGFF")
	}
	x.Build()
	return nil
}

// Overlapping appends to dst the distinct classes of the features
// overlapping [start, end) on chrom.  ok is false if chrom has no features.
func (x *Index) Overlapping(dst []string, chrom string, start, end int) (classes []string, ok bool) {
	tree, ok := x.trees[chrom]
	if !ok {
		return dst, false
	}
	tree.DoMatching(func(e interval.IntInterface) bool {
		class := e.(feature).class
		for _, c := range dst {
			if c == class {
				return false
			}
		}
		dst = append(dst, class)
		return false
	}, query{start, end})
	return dst, true
}

// Counter tallies reads by the feature classes they overlap.
type Counter struct {
	index *Index
	// Counts maps each class and derived category to its read count.
	Counts map[string]int
	// UnknownChrom counts reads on chromosomes absent from the index.
	UnknownChrom int
	classes      []string
	blocks       []siv.Interval
}

// NewCounter returns a Counter over index.  Every derived category and each
// of classes starts at zero, so it is reported even if nothing is counted.
func NewCounter(index *Index, classes []string) *Counter {
	c := &Counter{index: index, Counts: make(map[string]int)}
	for _, k := range append([]string{Total, Empty, ExonAndIntron, ExonOnly, IntronOnly, Spliced}, classes...) {
		c.Counts[k] = 0
	}
	return c
}

func contains(classes []string, class string) bool {
	for _, c := range classes {
		if c == class {
			return true
		}
	}
	return false
}

// Add counts one read aligned as a single block.
func (c *Counter) Add(iv *siv.Interval) {
	c.blocks = append(c.blocks[:0], *iv)
	c.AddBlocks(c.blocks, false)
}

// AddBlocks counts one read aligned as blocks, all on one chromosome.  The
// read's classes are the union of the classes overlapping each block, so the
// reference stretches skipped between blocks are ignored.
func (c *Counter) AddBlocks(blocks []siv.Interval, spliced bool) {
	if len(blocks) == 0 {
		return
	}
	c.classes = c.classes[:0]
	for i := range blocks {
		b := &blocks[i]
		end := b.End
		if end == b.Start {
			end++
		}
		var ok bool
		c.classes, ok = c.index.Overlapping(c.classes, b.Chrom, int(b.Start), int(end))
		if !ok {
			c.UnknownChrom++
			log.Debug.Printf("features: skipping read on unannotated chromosome %s", b.Chrom)
			return
		}
	}
	c.Counts[Total]++
	for _, class := range c.classes {
		c.Counts[class]++
	}
	if spliced {
		c.Counts[Spliced]++
	}
	exon, intron, gene := contains(c.classes, "exon"), contains(c.classes, "intron"), contains(c.classes, "gene")
	if exon && intron {
		c.Counts[ExonAndIntron]++
	}
	if len(c.classes) == 2 && gene && exon {
		c.Counts[ExonOnly]++
	}
	if len(c.classes) == 2 && gene && intron {
		c.Counts[IntronOnly]++
	}
	if !gene {
		c.Counts[Empty]++
	}
}

// BlockSource is a Source that can split the interval of its last Scan into
// aligned blocks, such as a samreads.Scanner.
type BlockSource interface {
	siv.Source
	Blocks(dst []siv.Interval) (blocks []siv.Interval, spliced bool)
}

// CountAll counts every read of src.  Reads from a BlockSource are counted
// block by block.
func (c *Counter) CountAll(src siv.Source) error {
	bs, _ := src.(BlockSource)
	var (
		iv      siv.Interval
		spliced bool
	)
	for src.Scan(&iv) {
		if bs == nil {
			c.Add(&iv)
			continue
		}
		c.blocks, spliced = bs.Blocks(c.blocks[:0])
		c.AddBlocks(c.blocks, spliced)
	}
	return src.Err()
}

// WriteReport writes label, then one "category\tcount" line per category in
// sorted order.
func (c *Counter) WriteReport(w io.Writer, label string) error {
	tsvw := tsv.NewWriter(w)
	tsvw.WriteString(label)
	if err := tsvw.EndLine(); err != nil {
		return err
	}
	keys := make([]string, 0, len(c.Counts))
	for k := range c.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		tsvw.WriteString(k)
		tsvw.WriteUint32(uint32(c.Counts[k]))
		if err := tsvw.EndLine(); err != nil {
			return err
		}
	}
	return tsvw.Flush()
}
