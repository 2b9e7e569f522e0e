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

// Package wig writes per-base coverage in the UCSC WIG fixedStep format, and
// rescales existing WIG files.
package wig

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

// Opts controls WIG output.
type Opts struct {
	// TrackInfo is appended to the track line, e.g. `name="Input, +"
	// color=128,0,0`.
	TrackInfo string
	// Scale multiplies every value on output.
	Scale float64
}

// DefaultOpts writes raw depths with no extra track info.
var DefaultOpts = Opts{Scale: 1}

// Writer writes fixedStep WIG tracks.  WriteHeader must be called once
// before the first WriteRegion.
type Writer struct {
	tsvw *tsv.Writer
	opts Opts
	buf  []byte
}

// NewWriter creates a Writer emitting to w.
func NewWriter(w io.Writer, opts Opts) *Writer {
	return &Writer{tsvw: tsv.NewWriter(w), opts: opts}
}

// WriteHeader writes the track line.
func (w *Writer) WriteHeader() error {
	line := "track type=wiggle_0 alwaysZero=on"
	if w.opts.TrackInfo != "" {
		line += " " + w.opts.TrackInfo
	}
	w.tsvw.WriteString(line)
	return w.tsvw.EndLine()
}

// WriteRegion writes one fixedStep block covering [start, start+len(depth))
// on chrom.  start is 0-based; the block declaration is 1-based.
func (w *Writer) WriteRegion(chrom string, start interval.PosType, depth []uint32) error {
	w.buf = append(w.buf[:0], "fixedStep chrom="...)
	w.buf = append(w.buf, chrom...)
	w.buf = append(w.buf, " start="...)
	w.buf = strconv.AppendInt(w.buf, int64(start)+1, 10)
	w.buf = append(w.buf, " step=1"...)
	w.tsvw.WriteString(gunsafe.BytesToString(w.buf))
	if err := w.tsvw.EndLine(); err != nil {
		return err
	}
	unscaled := w.opts.Scale == 1
	for _, d := range depth {
		if unscaled {
			w.tsvw.WriteUint32(d)
		} else {
			w.buf = strconv.AppendFloat(w.buf[:0], float64(d)*w.opts.Scale, 'g', -1, 64)
			w.tsvw.WriteString(gunsafe.BytesToString(w.buf))
		}
		if err := w.tsvw.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.tsvw.Flush()
}

// isDeclaration reports whether line is a track, browser, or step
// declaration line, which carry no values.
func isDeclaration(line []byte) bool {
	return len(line) == 0 || line[0] == '#' ||
		util.HasPrefix(line, "track") || util.HasPrefix(line, "browser") ||
		util.HasPrefix(line, "fixedStep") || util.HasPrefix(line, "variableStep")
}

// visitValues calls fn for every line of the WIG read from r.  On data lines
// value holds the line's value, and pos holds the position of a variableStep
// entry; both are nil on declaration lines.
func visitValues(r io.Reader, fn func(line, pos, value []byte, lineIdx int) error) error {
	var tokens [3][]byte
	sc := bufio.NewScanner(r)
	lineIdx := 0
	for sc.Scan() {
		lineIdx++
		line := sc.Bytes()
		var pos, value []byte
		if !isDeclaration(line) {
			switch util.GetTokens(tokens[:], line) {
			case 0:
			case 1:
				value = tokens[0]
			case 2:
				pos, value = tokens[0], tokens[1]
			default:
				return errors.Errorf("wig: line %d has too many columns", lineIdx)
			}
		}
		if err := fn(line, pos, value, lineIdx); err != nil {
			return err
		}
	}
	return sc.Err()
}

func parseValue(value []byte, lineIdx int) (float64, error) {
	v, err := strconv.ParseFloat(gunsafe.BytesToString(value), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "wig: line %d", lineIdx)
	}
	return v, nil
}

// Sum returns the sum of all values in the WIG read from r.
func Sum(r io.Reader) (total float64, err error) {
	err = visitValues(r, func(_, _, value []byte, lineIdx int) error {
		if value == nil {
			return nil
		}
		v, err := parseValue(value, lineIdx)
		total += v
		return err
	})
	return
}

// PerMillionDivisor returns the divisor that scales a track whose values sum
// to total to one million.
func PerMillionDivisor(total float64) (float64, error) {
	if total == 0 {
		return 0, errors.New("wig: cannot normalize a track whose values sum to zero")
	}
	return total / 1e6, nil
}

// Rescale copies the WIG read from r to w, dividing every value by divisor.
// Declaration lines are copied as-is.
func Rescale(r io.Reader, w io.Writer, divisor float64) error {
	tsvw := tsv.NewWriter(w)
	var buf []byte
	err := visitValues(r, func(line, pos, value []byte, lineIdx int) error {
		if value == nil {
			tsvw.WriteString(gunsafe.BytesToString(line))
			return tsvw.EndLine()
		}
		v, err := parseValue(value, lineIdx)
		if err != nil {
			return err
		}
		buf = buf[:0]
		if pos != nil {
			buf = append(buf, pos...)
			buf = append(buf, ' ')
		}
		buf = strconv.AppendFloat(buf, v/divisor, 'g', -1, 64)
		tsvw.WriteString(gunsafe.BytesToString(buf))
		return tsvw.EndLine()
	})
	if err != nil {
		return err
	}
	return tsvw.Flush()
}
