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
	"math"

	"github.com/grailbio/base/errors"
)

// ScoreFunc computes the aggregate score of a cluster.
type ScoreFunc func(c *Cluster) float64

// Sum adds up the member scores.  It is the default aggregation.
func Sum(c *Cluster) float64 {
	return c.SumScores()
}

// Mean averages the member scores.
func Mean(c *Cluster) float64 {
	if len(c.Members) == 0 {
		return 0
	}
	return c.SumScores() / float64(len(c.Members))
}

// Max returns the highest member score.
func Max(c *Cluster) float64 {
	best := math.Inf(-1)
	for i := range c.Members {
		best = math.Max(best, c.Members[i].Score)
	}
	return best
}

// Count returns the number of members.
func Count(c *Cluster) float64 {
	return float64(c.Count())
}

// Unique returns the number of distinct member positions.
func Unique(c *Cluster) float64 {
	return float64(c.UniqueFeatures())
}

// Density returns the summed score per base of the cluster's natural span.
// Zero-length clusters are treated as one base long.
func Density(c *Cluster) float64 {
	n := c.Len()
	if n < 1 {
		n = 1
	}
	return c.SumScores() / float64(n)
}

var scoreFuncs = map[string]ScoreFunc{
	"sum":     Sum,
	"mean":    Mean,
	"max":     Max,
	"count":   Count,
	"unique":  Unique,
	"density": Density,
}

// ParseScoreFunc looks up a ScoreFunc by its command-line name: one of sum,
// mean, max, count, unique or density.
func ParseScoreFunc(name string) (ScoreFunc, error) {
	if f, ok := scoreFuncs[name]; ok {
		return f, nil
	}
	return nil, errors.E(errors.Invalid, "unknown cluster score function", name)
}
