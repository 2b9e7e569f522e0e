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

package pileup_test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/seqfiles/encoding/source"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/seqfiles/pileup"
	"github.com/grailbio/seqfiles/util"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readOutput(t *testing.T, path string) string {
	ctx := vcontext.Background()
	in, err := util.OpenInput(ctx, path)
	require.NoError(t, err)
	data, err := ioutil.ReadAll(in.Reader())
	require.NoError(t, err)
	require.NoError(t, in.Close(ctx))
	return string(data)
}

func TestToWig(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	inPath := filepath.Join(tmpdir, "reads.bed")
	require.NoError(t, ioutil.WriteFile(inPath, []byte("track name=reads\nchr1\t0\t3\tr1\t0\t+\nchr1\t2\t4\tr2\t0\t-\nchr2\t9\t10\tr3\t0\t+\n"), 0644))

	outPath := filepath.Join(tmpdir, "out.wig")
	opts := pileup.DefaultWigOpts
	require.NoError(t, pileup.ToWig(ctx, inPath, outPath, &opts))
	expect.EQ(t, readOutput(t, outPath), "track type=wiggle_0 alwaysZero=on\n"+
		"fixedStep chrom=chr1 start=1 step=1\n1\n1\n2\n1\n"+
		"fixedStep chrom=chr2 start=10 step=1\n1\n")

	gzPath := filepath.Join(tmpdir, "out.wig.gz")
	opts = pileup.DefaultWigOpts
	opts.Pileup.Strand = interval.StrandFwd
	opts.Wig.Scale = 0.5
	opts.Wig.TrackInfo = `name="plus"`
	opts.Mask.Region = "chr1"
	require.NoError(t, pileup.ToWig(ctx, inPath, gzPath, &opts))
	expect.EQ(t, readOutput(t, gzPath), "track type=wiggle_0 alwaysZero=on name=\"plus\"\n"+
		"fixedStep chrom=chr1 start=1 step=1\n0.5\n0.5\n0.5\n")
}

func TestToWigBowtie(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	inPath := filepath.Join(tmpdir, "reads.txt")
	require.NoError(t, ioutil.WriteFile(inPath, []byte("r1\t+\tchrX\t4\tACG\tIII\t0\nr2\t-\tchrX\t5\tAC\tII\t0\n"), 0644))
	outPath := filepath.Join(tmpdir, "out.wig")
	opts := pileup.DefaultWigOpts
	opts.Input = source.Opts{Format: source.Bowtie}
	require.NoError(t, pileup.ToWig(ctx, inPath, outPath, &opts))
	expect.EQ(t, readOutput(t, outPath), "track type=wiggle_0 alwaysZero=on\n"+
		"fixedStep chrom=chrX start=5 step=1\n1\n2\n2\n")
}

func TestToWigErrors(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	inPath := filepath.Join(tmpdir, "reads.bed")
	require.NoError(t, ioutil.WriteFile(inPath, []byte("chr1\t5\t3\n"), 0644))
	opts := pileup.DefaultWigOpts
	err := pileup.ToWig(ctx, inPath, filepath.Join(tmpdir, "out.wig"), &opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1 has start 5 > end 3")
}
