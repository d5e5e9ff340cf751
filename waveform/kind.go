// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package waveform

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the shape of a generated waveform.
type Kind byte

// Available waveform kinds
const (
	Sine Kind = iota
	Rect
	Step
	CustomStep
	CustomDigitalLines
	Triangle
	Square
)

// Kinds maps the string keys that can be used in a config file to the Kind
// values.
var Kinds = map[string]Kind{
	"sine":                 Sine,
	"rect":                 Rect,
	"step":                 Step,
	"custom-step":          CustomStep,
	"custom-digital-lines": CustomDigitalLines,
	"triangle":             Triangle,
	"square":               Square,
}

var kindNames = map[Kind]string{
	Sine:               "sine",
	Rect:               "rect",
	Step:               "step",
	CustomStep:         "custom-step",
	CustomDigitalLines: "custom-digital-lines",
	Triangle:           "triangle",
	Square:             "square",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// ParseKind returns the Kind for the given name.
func ParseKind(s string) (Kind, error) {
	k, ok := Kinds[s]
	if !ok {
		return 0, &ConfigurationError{Field: "kind", Value: s, Reason: "unknown waveform"}
	}
	return k, nil
}

// Supports reports whether the kind can be generated for the given target.
func (k Kind) Supports(target Target) bool {
	switch k {
	case Rect, Step:
		return true
	case Sine, CustomStep, Triangle, Square:
		return target == Analog
	case CustomDigitalLines:
		return target == Digital
	}
	return false
}

// UnmarshalJSON implements the Unmarshaler interface for Kind by taking a
// string that matches a key in the Kinds map.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("waveform should be a string, got %s", data)
	}
	got, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = got
	return nil
}

// MarshalJSON implements the Marshaler interface for Kind.
func (k Kind) MarshalJSON() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("invalid waveform %d", byte(k))
	}
	return json.Marshal(name)
}

// Target is the kind of output the samples are generated for.
type Target byte

// Output targets
const (
	Analog Target = iota
	Digital
)

// Targets maps config file strings to Target values.
var Targets = map[string]Target{
	"analog":  Analog,
	"digital": Digital,
}

func (t Target) String() string {
	switch t {
	case Analog:
		return "analog"
	case Digital:
		return "digital"
	}
	return fmt.Sprintf("Target(%d)", byte(t))
}

// ParseTarget returns the Target for the given name.
func ParseTarget(s string) (Target, error) {
	t, ok := Targets[s]
	if !ok {
		return 0, &ConfigurationError{Field: "target", Value: s, Reason: "unknown output target"}
	}
	return t, nil
}

// UnmarshalJSON implements the Unmarshaler interface for Target.
func (t *Target) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("target should be a string, got %s", data)
	}
	got, err := ParseTarget(s)
	if err != nil {
		return err
	}
	*t = got
	return nil
}

// MarshalJSON implements the Marshaler interface for Target.
func (t Target) MarshalJSON() ([]byte, error) {
	if t != Analog && t != Digital {
		return nil, fmt.Errorf("invalid output target %d", byte(t))
	}
	return json.Marshal(t.String())
}
