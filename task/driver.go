// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package task

import (
	"context"

	"github.com/gotmc/daqwave/waveform"
)

// Driver is the hardware output a Task streams its buffer to. A driver must
// not modify the buffer passed to Write.
type Driver interface {
	SetTrigger(trig Trigger) error
	ConfigureTiming(rate float64, mode SampleMode, numSamples int) error
	Write(buf *waveform.Buffer) (int, error)
	WriteValue(value float64) error
	Start(ctx context.Context) error
	Stop() error
	Close() error
}
