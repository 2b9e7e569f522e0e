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

package util

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bgzf"
)

// IsStdin reports whether path names the process's standard input.
func IsStdin(path string) bool {
	return path == "" || path == "-" || path == "stdin"
}

// IsStdout reports whether path names the process's standard output.
func IsStdout(path string) bool {
	return path == "" || path == "-" || path == "stdout"
}

// IsCompressedPath reports whether output written to path is block-gzipped.
func IsCompressedPath(path string) bool {
	return strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".bgz")
}

// Input is a readable stream opened by OpenInput.
type Input struct {
	f   file.File
	dec io.ReadCloser
	r   io.Reader
}

// OpenInput opens path for reading.  "-", "stdin" and "" refer to the
// process's standard input.  Compressed files are decompressed transparently:
// by extension for regular paths, by content for stdin.
func OpenInput(ctx context.Context, path string) (*Input, error) {
	in := &Input{}
	if IsStdin(path) {
		in.dec, _ = compress.NewReader(os.Stdin)
		in.r = in.dec
		return in, nil
	}
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "couldn't open", path)
	}
	in.f = f
	in.r = f.Reader(ctx)
	if dec := compress.NewReaderPath(in.r, path); dec != nil {
		in.dec = dec
		in.r = dec
	}
	return in, nil
}

// Reader returns the (decompressed) contents of the input.
func (in *Input) Reader() io.Reader {
	return in.r
}

// Close releases the input.  Standard input itself is left open.
func (in *Input) Close(ctx context.Context) (err error) {
	if in.dec != nil {
		err = in.dec.Close()
	}
	if in.f != nil {
		if e := in.f.Close(ctx); e != nil && err == nil {
			err = e
		}
	}
	return
}

// Output is a writable stream created by CreateOutput.
type Output struct {
	f   file.File
	bgw *bgzf.Writer
	w   io.Writer
}

// CreateOutput creates path for writing.  "-", "stdout" and "" refer to the
// process's standard output.  Paths ending in .gz or .bgz are written in BGZF
// format, so the results can be tabix-indexed.
func CreateOutput(ctx context.Context, path string) (*Output, error) {
	out := &Output{}
	if IsStdout(path) {
		out.w = os.Stdout
		return out, nil
	}
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "couldn't create", path)
	}
	out.f = f
	out.w = f.Writer(ctx)
	if IsCompressedPath(path) {
		// One compressor keeps output generation single-threaded.
		out.bgw = bgzf.NewWriter(out.w, 1)
		out.w = out.bgw
	}
	return out, nil
}

// Writer returns the destination for uncompressed output bytes.
func (out *Output) Writer() io.Writer {
	return out.w
}

// Close flushes any compressor and closes the underlying file.  Standard
// output is left open.
func (out *Output) Close(ctx context.Context) (err error) {
	if out.bgw != nil {
		err = out.bgw.Close()
	}
	if out.f != nil {
		if e := out.f.Close(ctx); e != nil && err == nil {
			err = e
		}
	}
	return
}
