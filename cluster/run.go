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

package cluster

import (
	"context"
	"io"

	"github.com/grailbio/base/log"
	"github.com/grailbio/seqfiles/encoding/bed"
	"github.com/grailbio/seqfiles/encoding/source"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/seqfiles/util"
)

// RunOpts configures Run.
type RunOpts struct {
	Input  source.Opts
	Mask   interval.MaskOpts
	Passes Pipeline
	// TrackLine, if nonempty, is written as the attributes of a leading track
	// line.
	TrackLine string
}

// Run clusters the intervals in inPath and writes the emitted clusters to
// outPath as BED6.  "-" reads stdin or writes stdout; a .gz output path is
// BGZF-compressed.
func Run(ctx context.Context, inPath, outPath string, opts RunOpts) (err error) {
	if err = opts.Passes.Validate(); err != nil {
		return err
	}
	in, err := source.Open(ctx, inPath, opts.Input)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	src, err := opts.Mask.Apply(in)
	if err != nil {
		return err
	}
	c, err := opts.Passes.Run(src)
	if err != nil {
		return err
	}

	out, err := util.CreateOutput(ctx, outPath)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	if err = WriteBED(c, out.Writer(), opts.TrackLine); err != nil {
		return err
	}
	stats := c.Stats()
	log.Printf("%s: %d cluster(s) emitted, %d discarded", inPath, stats.Emitted, stats.Discarded)
	return nil
}

// WriteBED drains c, writing its clusters to w as BED6 lines.
func WriteBED(c *Clusterer, w io.Writer, trackLine string) error {
	bw := bed.NewWriter(w, bed.BED6)
	if trackLine != "" {
		if err := bw.WriteTrackLine(trackLine); err != nil {
			return err
		}
	}
	for c.Scan() {
		iv := c.Cluster().Interval()
		if err := bw.Write(&iv); err != nil {
			return err
		}
	}
	if err := c.Err(); err != nil {
		return err
	}
	return bw.Flush()
}
