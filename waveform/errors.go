// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package waveform

import "fmt"

// ConfigurationError reports an invalid or unsupported waveform parameter.
// Generate returns it before allocating any samples.
type ConfigurationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid waveform %s %v: %s", e.Field, e.Value, e.Reason)
}

func configErr(field string, value interface{}, format string, a ...interface{}) error {
	return &ConfigurationError{Field: field, Value: value, Reason: fmt.Sprintf(format, a...)}
}
