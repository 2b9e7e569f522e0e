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

	"github.com/grailbio/base/log"
	"github.com/grailbio/seqfiles/encoding/source"
	"github.com/grailbio/seqfiles/features"
)

type countOpts struct {
	gffPath string
	classes []string
	label   string
	format  source.Format
}

// countReads tallies the reads of inPath by the annotated features they
// overlap.
func countReads(ctx context.Context, inPath, outPath string, opts countOpts) (err error) {
	index := features.NewIndex()
	if err = withInput(ctx, opts.gffPath, func(r io.Reader) error {
		return index.LoadGFF(r, opts.classes)
	}); err != nil {
		return err
	}
	log.Debug.Printf("%s: indexed %d feature(s)", opts.gffPath, index.Len())

	in, err := source.Open(ctx, inPath, source.Opts{Format: opts.format})
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	counter := features.NewCounter(index, opts.classes)
	// The unwrapped source lets SAM reads be counted block by block.
	if err = counter.CountAll(in.Source); err != nil {
		return err
	}
	if counter.UnknownChrom > 0 {
		log.Printf("%s: %d read(s) on chromosomes without features", inPath, counter.UnknownChrom)
	}
	label := opts.label
	if label == "" {
		label = inPath
	}
	return withOutput(ctx, outPath, func(w io.Writer) error {
		return counter.WriteReport(w, label)
	})
}
