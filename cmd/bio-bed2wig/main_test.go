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

package main

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestWigPath(t *testing.T) {
	expect.EQ(t, wigPath("reads.bed", false), "reads.wig")
	expect.EQ(t, wigPath("/data/reads.sam.gz", false), "/data/reads.wig")
	expect.EQ(t, wigPath("reads.bwt", true), "reads.wig.gz")
	expect.EQ(t, wigPath("reads", false), "reads.wig")
}
