// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package task

import (
	"context"
	"errors"
	"sync"

	"github.com/gotmc/daqwave/waveform"
)

// Simulator is a Driver without hardware. It records what a real driver
// would have been asked to do.
type Simulator struct {
	mu         sync.Mutex
	trigger    Trigger
	rate       float64
	mode       SampleMode
	numSamples int
	written    *waveform.Buffer
	values     []float64
	running    bool
	closed     bool
	starts     int
	stops      int

	// WriteErr, when set, is returned by Write.
	WriteErr error
}

// NewSimulator returns a stopped simulated output.
func NewSimulator() *Simulator {
	return &Simulator{}
}

var errSimulatorClosed = errors.New("simulated output closed")

// SetTrigger records the start trigger.
func (s *Simulator) SetTrigger(trig Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSimulatorClosed
	}
	s.trigger = trig
	return nil
}

// ConfigureTiming records the sample clock settings.
func (s *Simulator) ConfigureTiming(rate float64, mode SampleMode, numSamples int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSimulatorClosed
	}
	if rate <= 0 {
		return errors.New("sample clock rate must be positive")
	}
	s.rate = rate
	s.mode = mode
	s.numSamples = numSamples
	return nil
}

// Write keeps a copy of the buffer.
func (s *Simulator) Write(buf *waveform.Buffer) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errSimulatorClosed
	}
	if s.WriteErr != nil {
		return 0, s.WriteErr
	}
	cp := buf.Clone()
	s.written = cp
	return cp.Len(), nil
}

// WriteValue records a single immediate value.
func (s *Simulator) WriteValue(value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSimulatorClosed
	}
	s.values = append(s.values, value)
	return nil
}

// Start marks the output running. A buffer must have been written.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSimulatorClosed
	}
	if s.written == nil {
		return errors.New("no samples written")
	}
	s.running = true
	s.starts++
	return nil
}

// Stop marks the output stopped.
func (s *Simulator) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSimulatorClosed
	}
	s.running = false
	s.stops++
	return nil
}

// Close releases the simulated output.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSimulatorClosed
	}
	s.running = false
	s.closed = true
	return nil
}

// Written returns the last buffer written.
func (s *Simulator) Written() *waveform.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Timing returns the last sample clock settings.
func (s *Simulator) Timing() (float64, SampleMode, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate, s.mode, s.numSamples
}

// LastTrigger returns the last trigger set.
func (s *Simulator) LastTrigger() Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trigger
}

// Values returns the immediate values written so far.
func (s *Simulator) Values() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.values...)
}

// Running reports whether the output is started.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Closed reports whether Close has been called.
func (s *Simulator) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Counts returns the number of Start and Stop calls.
func (s *Simulator) Counts() (starts, stops int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.stops
}
