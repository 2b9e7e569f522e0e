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

/*
bio-bed2wig piles up aligned reads and writes their per-base coverage as a
fixedStep WIG track.

Each input is a BED, Bowtie or SAM file of reads sorted by chromosome, then
start.  Coverage is written for every maximal run of overlapping reads;
uncovered stretches are left out and read as zero (alwaysZero=on).

With one input, the track goes to -out.  With several, they are converted in
parallel and each is written next to its input with the extension replaced
by .wig (or .wig.gz with -gzip).

Sample usage:

	bio-bed2wig \
	    -strand + \
	    -track 'name="plus" color=0,0,255' \
	    -out plus.wig \
	    reads.bed
*/
package main
