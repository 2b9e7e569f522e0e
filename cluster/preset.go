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

package cluster

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/seqfiles/interval"
	"gonum.org/v1/gonum/stat"
)

// unboundedGap is a gap width no two intervals on a chromosome can reach, so
// only the forced span closes clusters.
const unboundedGap = 1e15

// Preset is a named clustering recipe for small-RNA read alignments.
type Preset struct {
	// Passes are run back to back.
	Passes Pipeline
	// InputScore, when UseInputScore is set, replaces the score of every input
	// read.
	InputScore    float64
	UseInputScore bool
	// TrackName names the track holding the final clusters.
	TrackName string
}

// Brennecke tiles reads into 5 kb windows scoring at least 5, then merges
// windows lying within 20 kb of each other.
var Brennecke = Preset{
	Passes: Pipeline{
		{
			GapWidth:        unboundedGap,
			UseThreshold:    true,
			MinClusterScore: 5,
			ForcedSpan:      5000,
		},
		{
			GapWidth:     20000,
			UseThreshold: true,
		},
	},
	TrackName: "clustered",
}

// hannonMinUniqueReads is the minimum number of distinct read positions in a
// 200 bp window.
const hannonMinUniqueReads = 3

// Hannon tiles reads into 200 bp windows holding at least three distinct read
// positions, then merges windows within 200 bp of each other and keeps merged
// clusters whose window scores sum past 40.  The final score is that sum per
// base.
var Hannon = Preset{
	Passes: Pipeline{
		{
			GapWidth:        unboundedGap,
			ScoreThreshold:  1,
			UseThreshold:    true,
			MinFeatureCount: hannonMinUniqueReads,
			MinClusterSpan:  1,
			ForcedSpan:      200,
			ScoreFunc:       Unique,
			MinClusterScore: hannonMinUniqueReads,
		},
		{
			GapWidth:       200,
			ScoreThreshold: 1,
			UseThreshold:   true,
			ScoreFunc:      Density,
			Filter:         func(c *Cluster) bool { return c.SumScores() > 40 },
		},
	},
	InputScore:    2,
	UseInputScore: true,
	TrackName:     "clustered",
}

// Apply configures opts to run p.  An existing track line is kept.
func (p *Preset) Apply(opts *RunOpts) {
	opts.Passes = p.Passes
	if p.UseInputScore {
		opts.Input.BED.ForceScore = p.InputScore
		opts.Input.BED.UseForceScore = true
	}
	if opts.TrackLine == "" && p.TrackName != "" {
		opts.TrackLine = fmt.Sprintf("name=%q", p.TrackName)
	}
}

var presets = map[string]*Preset{
	"brennecke": &Brennecke,
	"hannon":    &Hannon,
}

// LookupPreset returns the preset with the given command-line name.
func LookupPreset(name string) (*Preset, error) {
	if p, ok := presets[name]; ok {
		return p, nil
	}
	return nil, errors.E(errors.Invalid, "unknown cluster preset", name)
}

// SDThreshold returns mean + k*sd of the scores of ivs, using the population
// standard deviation.  Intervals without a score count as 0.
func SDThreshold(ivs []interval.Interval, k float64) float64 {
	if len(ivs) == 0 {
		return 0
	}
	scores := make([]float64, len(ivs))
	for i := range ivs {
		scores[i] = ivs[i].Score
	}
	mean, sd := stat.PopMeanStdDev(scores, nil)
	return mean + k*sd
}

// Enriched-region parameters for tiling-array probes: at least
// enrichedMinProbes probes scoring above mean + enrichedSDs standard
// deviations, each within enrichedMaxDist bases of the previous one.
const (
	enrichedSDs       = 2.5
	enrichedMinProbes = 4
	enrichedMaxDist   = 500
)

// EnrichedRegionOpts returns the single-pass options calling enriched regions
// over probes sorted by position, with the probe score threshold computed by
// SDThreshold from the whole array.
func EnrichedRegionOpts(probes []interval.Interval) Opts {
	return Opts{
		GapWidth:        enrichedMaxDist + 1,
		ScoreThreshold:  SDThreshold(probes, enrichedSDs),
		UseThreshold:    true,
		MinFeatureCount: enrichedMinProbes,
	}
}
