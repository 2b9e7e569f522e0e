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

package gffreads_test

import (
	"strings"
	"testing"

	"github.com/grailbio/seqfiles/encoding/gffreads"
	"github.com/grailbio/seqfiles/interval"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

const testGFF = "##gff-version 2\n" +
	"chr1\tNimbleScan\tprobe\t101\t150\t1.25\t.\t.\tName CHR1P0101\n" +
	"chr1\tNimbleScan\tprobe\t201\t250\t-0.5\t+\t.\tID CHR1P0201\n" +
	"chr2\tNimbleScan\tprobe\t1\t50\t.\t-\t.\tNote control\n"

func TestScanner(t *testing.T) {
	ivs, err := interval.ReadAll(gffreads.NewScanner(strings.NewReader(testGFF)))
	require.NoError(t, err)
	expect.EQ(t, ivs, []interval.Interval{
		{Chrom: "chr1", Start: 100, End: 150, Name: "CHR1P0101", Score: 1.25, HasScore: true},
		{Chrom: "chr1", Start: 200, End: 250, Name: "CHR1P0201", Score: -0.5, HasScore: true, Strand: interval.StrandFwd},
		{Chrom: "chr2", Start: 0, End: 50, Strand: interval.StrandRev},
	})
}

func TestScannerMalformed(t *testing.T) {
	_, err := interval.ReadAll(gffreads.NewScanner(strings.NewReader("chr1\tsrc\tprobe\tabc\t150\t1\t.\t.\n")))
	require.Error(t, err)
}
