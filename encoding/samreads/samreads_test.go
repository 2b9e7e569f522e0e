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

package samreads_test

import (
	"strings"
	"testing"

	"github.com/grailbio/seqfiles/encoding/samreads"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSAM = `@HD	VN:1.5	SO:coordinate
@SQ	SN:chr1	LN:1000
@SQ	SN:chr2	LN:1000
r1	0	chr1	11	60	10M	*	0	0	ACGTACGTAC	IIIIIIIIII
r2	16	chr1	16	60	5M	*	0	0	ACGTA	IIIII
r3	4	*	0	0	*	*	0	0	ACGTA	IIIII
r4	0	chr2	1	60	3M	*	0	0	ACG	III
`

func TestScanner(t *testing.T) {
	ivs, err := interval.ReadAll(samreads.NewScanner(strings.NewReader(testSAM)))
	require.NoError(t, err)
	expect.EQ(t, ivs, []interval.Interval{
		{Chrom: "chr1", Start: 10, End: 20, Name: "r1", Strand: interval.StrandFwd},
		{Chrom: "chr1", Start: 15, End: 20, Name: "r2", Strand: interval.StrandRev},
		{Chrom: "chr2", Start: 0, End: 3, Name: "r4", Strand: interval.StrandFwd},
	})
}

func TestScannerHeaderless(t *testing.T) {
	const data = "r1\t0\tchrX\t101\t60\t4M\t*\t0\t0\tACGT\tIIII\n"
	ivs, err := interval.ReadAll(samreads.NewScanner(strings.NewReader(data)))
	require.NoError(t, err)
	expect.EQ(t, ivs, []interval.Interval{
		{Chrom: "chrX", Start: 100, End: 104, Name: "r1", Strand: interval.StrandFwd},
	})
}

func TestScannerMalformed(t *testing.T) {
	_, err := interval.ReadAll(samreads.NewScanner(strings.NewReader("@HD\tVN:1.5\nr1\t0\tchr1\n")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "samreads.Scanner: line 2")
}

func TestBlocks(t *testing.T) {
	const data = "r1\t16\tchr1\t1\t60\t2S10M100N5M1D3=2X4I1M\t*\t0\t0\tNNACGTACGTACACGTAACGTAGGGGA\tIIIIIIIIIIIIIIIIIIIIIIIIIII\n" +
		"r2\t0\tchr1\t301\t60\t4M\t*\t0\t0\tACGT\tIIII\n"
	sc := samreads.NewScanner(strings.NewReader(data))
	var iv interval.Interval

	require.True(t, sc.Scan(&iv))
	blocks, spliced := sc.Blocks(nil)
	expect.True(t, spliced)
	expect.EQ(t, blocks, []interval.Interval{
		{Chrom: "chr1", Start: 0, End: 10, Name: "r1", Strand: interval.StrandRev},
		{Chrom: "chr1", Start: 110, End: 115, Name: "r1", Strand: interval.StrandRev},
		{Chrom: "chr1", Start: 116, End: 122, Name: "r1", Strand: interval.StrandRev},
	})

	require.True(t, sc.Scan(&iv))
	blocks, spliced = sc.Blocks(blocks[:0])
	expect.False(t, spliced)
	expect.EQ(t, blocks, []interval.Interval{iv})
	require.NoError(t, sc.Err())
}
