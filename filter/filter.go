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

// Package filter implements interval Sources that drop records by length or
// by score.
package filter

import (
	"math"

	"github.com/grailbio/seqfiles/interval"
	"github.com/pkg/errors"
)

// ErrNoScore is returned (wrapped) when Value meets a record without a score.
var ErrNoScore = errors.New("interval has no score")

// Range is an open interval (Min, Max) of accepted values.
type Range struct {
	Min, Max float64
}

// Unbounded accepts every finite value.
var Unbounded = Range{Min: math.Inf(-1), Max: math.Inf(1)}

// Contains reports whether Min < v < Max.
func (r Range) Contains(v float64) bool {
	return r.Min < v && v < r.Max
}

type filtered struct {
	src  interval.Source
	keep func(iv *interval.Interval) (bool, error)
	err  error
}

func (f *filtered) Scan(iv *interval.Interval) bool {
	if f.err != nil {
		return false
	}
	for f.src.Scan(iv) {
		ok, err := f.keep(iv)
		if err != nil {
			f.err = err
			return false
		}
		if ok {
			return true
		}
	}
	return false
}

func (f *filtered) Err() error {
	if f.err != nil {
		return f.err
	}
	return f.src.Err()
}

// Size returns the intervals of src whose length lies strictly inside r.
func Size(src interval.Source, r Range) interval.Source {
	return &filtered{
		src: src,
		keep: func(iv *interval.Interval) (bool, error) {
			return r.Contains(float64(iv.Len())), nil
		},
	}
}

// Value returns the intervals of src whose score lies strictly inside r.  It
// fails on the first interval without a score.
func Value(src interval.Source, r Range) interval.Source {
	return &filtered{
		src: src,
		keep: func(iv *interval.Interval) (bool, error) {
			if !iv.HasScore {
				return false, errors.Wrapf(ErrNoScore, "filter.Value: %v", *iv)
			}
			return r.Contains(iv.Score), nil
		},
	}
}
