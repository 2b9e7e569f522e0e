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

/*Package cluster groups sorted, scored genomic intervals into clusters.

  A Clusterer makes a single pass over intervals sorted by (chromosome,
  start), holding at most one open cluster.  An interval joins the open
  cluster unless it lies on another chromosome, starts at least GapWidth
  bases past the cluster's end, or would stretch the cluster beyond
  ForcedSpan.  Closed clusters are tested against the acceptance thresholds
  and either emitted or dropped.

  Emitted clusters convert back to intervals (Cluster.Interval), so the
  output of one pass can be clustered again with coarser parameters; see
  Pipeline.
*/
package cluster
