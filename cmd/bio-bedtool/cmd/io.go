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

package cmd

import (
	"context"
	"io"

	"github.com/grailbio/seqfiles/encoding/bed"
	"github.com/grailbio/seqfiles/encoding/source"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/seqfiles/util"
)

// transform reads inPath in the given format, and writes the intervals
// returned by fn to outPath as format.
func transform(ctx context.Context, inPath, outPath string, in source.Opts, format bed.Format, trackLine string,
	fn func(src interval.Source) (interval.Source, error)) (err error) {
	f, err := source.Open(ctx, inPath, in)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	src, err := fn(f)
	if err != nil {
		return err
	}
	return withOutput(ctx, outPath, func(w io.Writer) error {
		bw := bed.NewWriter(w, format)
		if trackLine != "" {
			if err := bw.WriteTrackLine(trackLine); err != nil {
				return err
			}
		}
		_, err := bed.Copy(bw, src)
		return err
	})
}

func withOutput(ctx context.Context, outPath string, fn func(w io.Writer) error) (err error) {
	out, err := util.CreateOutput(ctx, outPath)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	return fn(out.Writer())
}

func withInput(ctx context.Context, inPath string, fn func(r io.Reader) error) (err error) {
	in, err := util.OpenInput(ctx, inPath)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	return fn(in.Reader())
}
