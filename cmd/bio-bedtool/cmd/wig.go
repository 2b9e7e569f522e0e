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

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/seqfiles/encoding/wig"
	"github.com/grailbio/seqfiles/util"
)

// wigScale rescales a WIG track to values per million.  The input is read
// twice, so it cannot be stdin.
func wigScale(ctx context.Context, inPath, outPath string) error {
	if util.IsStdin(inPath) {
		return errors.E(errors.Invalid, "wigscale needs a seekable input path, not stdin")
	}
	var total float64
	err := withInput(ctx, inPath, func(r io.Reader) (err error) {
		total, err = wig.Sum(r)
		return err
	})
	if err != nil {
		return err
	}
	divisor, err := wig.PerMillionDivisor(total)
	if err != nil {
		return errors.E(err, inPath)
	}
	log.Printf("%s: total %g, dividing by %g", inPath, total, divisor)
	return withInput(ctx, inPath, func(r io.Reader) error {
		return withOutput(ctx, outPath, func(w io.Writer) error {
			return wig.Rescale(r, w, divisor)
		})
	})
}
