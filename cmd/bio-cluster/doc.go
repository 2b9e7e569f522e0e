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
bio-cluster merges a sorted stream of scored genomic intervals into clusters
and writes the surviving clusters as BED6.

Intervals are merged while the gap between the next interval's start and the
open cluster's end is below -gap.  Clusters are then filtered by span, member
count and aggregate score; -forced-span pads each survivor to a fixed width.

Input may be BED, bedGraph, Bowtie, SAM or GFF; the format is guessed from
the file extension unless -format is given.  Inputs must be sorted by
chromosome, then start.

Two historical pipelines are available as presets:

	brennecke: clusters of at least 5 reads within 5kb, merged within 20kb
	hannon:    clusters of at least 3 unique reads within 200bp, merged
	           within 200bp and kept when the read sum exceeds 40

Sample usage:

	bio-cluster \
	    -gap 500 \
	    -min-count 3 \
	    -out clusters.bed.gz \
	    reads.bed
*/
package main
