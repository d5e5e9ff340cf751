// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package task

import (
	"encoding/json"
	"fmt"
)

// SampleMode determines how many times the sample buffer is played.
type SampleMode byte

// Available sample modes
const (
	Continuous SampleMode = iota
	Finite
	HWTimedSinglePoint
)

// SampleModes maps the string keys that can be used in a config file to the
// SampleMode values.
var SampleModes = map[string]SampleMode{
	"continuous": Continuous,
	"finite":     Finite,
	"hw_timed":   HWTimedSinglePoint,
}

var sampleModeNames = map[SampleMode]string{
	Continuous:         "continuous",
	Finite:             "finite",
	HWTimedSinglePoint: "hw_timed",
}

func (m SampleMode) String() string {
	return sampleModeNames[m]
}

// ParseSampleMode returns the SampleMode for the given key.
func ParseSampleMode(s string) (SampleMode, error) {
	got, ok := SampleModes[s]
	if !ok {
		return 0, fmt.Errorf("invalid sample mode %q", s)
	}
	return got, nil
}

// UnmarshalJSON implements the Unmarshaler interface for SampleMode by taking
// a string that matches a key in the SampleModes map.
func (m *SampleMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("sample mode should be a string, got %s", data)
	}
	got, err := ParseSampleMode(s)
	if err != nil {
		return err
	}
	*m = got
	return nil
}

// Edge is the active edge of a digital start trigger.
type Edge byte

// Trigger edges
const (
	Rising Edge = iota
	Falling
)

// Edges maps config file strings to Edge values.
var Edges = map[string]Edge{
	"rising":  Rising,
	"falling": Falling,
}

func (e Edge) String() string {
	if e == Falling {
		return "falling"
	}
	return "rising"
}

// ParseEdge returns the Edge for the given key.
func ParseEdge(s string) (Edge, error) {
	got, ok := Edges[s]
	if !ok {
		return 0, fmt.Errorf("invalid trigger edge %q", s)
	}
	return got, nil
}

// UnmarshalJSON implements the Unmarshaler interface for Edge.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("trigger edge should be a string, got %s", data)
	}
	got, err := ParseEdge(s)
	if err != nil {
		return err
	}
	*e = got
	return nil
}

// Trigger gates the start of an output on a digital edge.
type Trigger struct {
	Enabled bool   `json:"enabled"`
	Source  string `json:"source"`
	Edge    Edge   `json:"edge"`
}

func (t Trigger) String() string {
	if !t.Enabled {
		return "none"
	}
	return fmt.Sprintf("%s edge on %s", t.Edge, t.Source)
}
