// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package task sequences the output of a generated waveform on a driver:
// configure the trigger and sample clock, write the buffer, start and stop.
package task

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gotmc/daqwave/waveform"
	"github.com/oklog/ulid/v2"
)

// State is the configuration state of a Task.
type State byte

// Task states
const (
	Unconfigured State = iota
	Configured
)

func (s State) String() string {
	if s == Configured {
		return "configured"
	}
	return "unconfigured"
}

// Task owns one output driver and the buffer generated for it. A task is
// Configured only while it holds a buffer generated from its current spec;
// any change of spec drops the buffer.
type Task struct {
	Name    string
	Target  waveform.Target
	Mode    SampleMode
	Trigger Trigger
	Logger  *log.Logger

	mu      sync.Mutex
	driver  Driver
	state   State
	spec    waveform.Spec
	buffer  *waveform.Buffer
	running bool
	closed  bool
	runID   ulid.ULID
}

// New creates an unconfigured task streaming to the given driver.
func New(name string, target waveform.Target, driver Driver) *Task {
	return &Task{
		Name:   name,
		Target: target,
		Mode:   Continuous,
		driver: driver,
	}
}

func (t *Task) logf(format string, v ...interface{}) {
	if t.Logger != nil {
		t.Logger.Printf(format, v...)
		return
	}
	log.Printf(format, v...)
}

// State returns the configuration state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Running reports whether the driver has been started and not stopped since.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// RunID identifies the most recent Start.
func (t *Task) RunID() ulid.ULID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runID
}

// Spec returns the spec the current buffer was generated from.
func (t *Task) Spec() (waveform.Spec, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Configured {
		return waveform.Spec{}, &NotConfiguredError{Task: t.Name, Op: "read spec"}
	}
	return t.spec, nil
}

// Buffer returns a copy of the generated buffer. Changes to the copy do not
// reach the samples the task plays.
func (t *Task) Buffer() (*waveform.Buffer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Configured {
		return nil, &NotConfiguredError{Task: t.Name, Op: "read buffer"}
	}
	return t.buffer.Clone(), nil
}

// Configure stops the task if running, drops any previous buffer and
// generates a new one from spec. The spec target is replaced by the task's
// target. On error the task is left unconfigured.
func (t *Task) Configure(spec waveform.Spec) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if err := t.stop(); err != nil {
		return err
	}
	t.reset()

	spec.Target = t.Target
	buf, err := waveform.Generate(spec)
	if err != nil {
		return err
	}
	t.spec = spec
	t.buffer = buf
	t.state = Configured
	t.logf("%s: generated %d samples of %s at %g S/s", t.Name, buf.Len(), spec.Kind, buf.Rate)
	return nil
}

// Invalidate stops the task and drops its buffer, as needed after any
// parameter change. Configure must be called again before Start.
func (t *Task) Invalidate() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if err := t.stop(); err != nil {
		return err
	}
	t.reset()
	return nil
}

// Start writes the buffer to the driver and starts the output.
func (t *Task) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if t.state != Configured {
		return &NotConfiguredError{Task: t.Name, Op: "start"}
	}
	if err := t.stop(); err != nil {
		return err
	}
	if err := t.driver.SetTrigger(t.Trigger); err != nil {
		return fmt.Errorf("%s: error setting trigger: %w", t.Name, err)
	}
	if err := t.driver.ConfigureTiming(t.buffer.Rate, t.Mode, t.buffer.Len()); err != nil {
		return fmt.Errorf("%s: error configuring sample clock: %w", t.Name, err)
	}
	n, err := t.driver.Write(t.buffer)
	if err != nil {
		return fmt.Errorf("%s: error writing samples: %w", t.Name, err)
	}
	if n != t.buffer.Len() {
		return fmt.Errorf("%s: wrote %d of %d samples", t.Name, n, t.buffer.Len())
	}
	if err := t.driver.Start(ctx); err != nil {
		return fmt.Errorf("%s: error starting output: %w", t.Name, err)
	}
	t.running = true
	t.runID = ulid.Make()
	t.logf("%s: run %s started, %d samples %s, trigger %s", t.Name, t.runID, n, t.Mode, t.Trigger)
	return nil
}

// Stop stops the output. Stopping a task that is not running is not an
// error.
func (t *Task) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	return t.stop()
}

// WriteValue stops any running waveform and immediately writes a single
// value to the output.
func (t *Task) WriteValue(value float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if err := t.stop(); err != nil {
		return err
	}
	if err := t.driver.WriteValue(value); err != nil {
		return fmt.Errorf("%s: error writing value %g: %w", t.Name, value, err)
	}
	t.logf("%s: output set to %g", t.Name, value)
	return nil
}

// Close stops the output and releases the driver.
func (t *Task) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if err := t.stop(); err != nil {
		return err
	}
	t.reset()
	t.closed = true
	if err := t.driver.Close(); err != nil {
		return fmt.Errorf("%s: error closing driver: %w", t.Name, err)
	}
	return nil
}

func (t *Task) stop() error {
	if !t.running {
		return nil
	}
	if err := t.driver.Stop(); err != nil {
		return fmt.Errorf("%s: error stopping output: %w", t.Name, err)
	}
	t.running = false
	t.logf("%s: run %s stopped", t.Name, t.runID)
	return nil
}

func (t *Task) reset() {
	t.buffer = nil
	t.spec = waveform.Spec{}
	t.state = Unconfigured
}
