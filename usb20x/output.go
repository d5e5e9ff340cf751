// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package usb20x

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gotmc/daqwave/task"
	"github.com/gotmc/daqwave/waveform"
)

var errNoTrigger = errors.New("USB-20X outputs have no start trigger")

// VoltsToCounts converts a voltage into the 12-bit code of an analog output.
func VoltsToCounts(volts float64) (uint16, error) {
	if math.IsNaN(volts) || volts < 0 || volts > AnalogOutputMaxVolts {
		return 0, fmt.Errorf("%g V outside the 0 to %g V output range", volts, AnalogOutputMaxVolts)
	}
	return uint16(math.Round(volts / AnalogOutputMaxVolts * analogOutputMaxCount)), nil
}

// CountsToVolts converts a 12-bit analog output code into volts.
func CountsToVolts(counts uint16) float64 {
	return float64(counts) * AnalogOutputMaxVolts / analogOutputMaxCount
}

// AnalogOutput streams an analog buffer to one channel of a USB-202 or
// USB-205.
type AnalogOutput struct {
	daq     DAQer
	channel int
	pacer   pacer

	mu     sync.Mutex
	counts []uint16
	closed bool
}

// NewAnalogOutput returns an output driving the given channel, 0 or 1.
func NewAnalogOutput(daq DAQer, channel int) (*AnalogOutput, error) {
	if channel < 0 || channel >= analogOutputChannels {
		return nil, fmt.Errorf("analog output channel %d does not exist", channel)
	}
	return &AnalogOutput{daq: daq, channel: channel}, nil
}

// Channel returns the analog output channel number.
func (ao *AnalogOutput) Channel() int {
	return ao.channel
}

// SetTrigger accepts only a disabled trigger.
func (ao *AnalogOutput) SetTrigger(trig task.Trigger) error {
	if trig.Enabled {
		return errNoTrigger
	}
	return nil
}

// ConfigureTiming sets the software sample clock.
func (ao *AnalogOutput) ConfigureTiming(rate float64, mode task.SampleMode, numSamples int) error {
	if err := ao.check(); err != nil {
		return err
	}
	return ao.pacer.configure(rate, mode)
}

// Write converts the whole buffer to output codes. Nothing is kept if any
// sample is outside the output range.
func (ao *AnalogOutput) Write(buf *waveform.Buffer) (int, error) {
	if err := ao.check(); err != nil {
		return 0, err
	}
	if buf.Target != waveform.Analog {
		return 0, fmt.Errorf("cannot write a %s buffer to an analog output", buf.Target)
	}
	if ao.pacer.running() {
		return 0, errRunning
	}
	counts := make([]uint16, len(buf.Analog))
	for i, v := range buf.Analog {
		c, err := VoltsToCounts(v)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		counts[i] = c
	}
	ao.mu.Lock()
	ao.counts = counts
	ao.mu.Unlock()
	return len(counts), nil
}

// WriteValue sets the output to a constant voltage.
func (ao *AnalogOutput) WriteValue(volts float64) error {
	if err := ao.check(); err != nil {
		return err
	}
	if ao.pacer.running() {
		return errRunning
	}
	c, err := VoltsToCounts(volts)
	if err != nil {
		return err
	}
	return ao.send(c)
}

// Start replays the written buffer.
func (ao *AnalogOutput) Start(ctx context.Context) error {
	if err := ao.check(); err != nil {
		return err
	}
	ao.mu.Lock()
	counts := ao.counts
	ao.mu.Unlock()
	return ao.pacer.start(ctx, len(counts), func(i int) error {
		return ao.send(counts[i])
	})
}

// Wait blocks until a finite output has played its buffer.
func (ao *AnalogOutput) Wait(ctx context.Context) error {
	return ao.pacer.wait(ctx)
}

// Stop halts the output, leaving the last sample on the channel.
func (ao *AnalogOutput) Stop() error {
	return ao.pacer.stop()
}

// Close stops the output. The device itself stays open.
func (ao *AnalogOutput) Close() error {
	ao.mu.Lock()
	if ao.closed {
		ao.mu.Unlock()
		return errClosed
	}
	ao.closed = true
	ao.counts = nil
	ao.mu.Unlock()
	return ao.pacer.stop()
}

func (ao *AnalogOutput) check() error {
	ao.mu.Lock()
	defer ao.mu.Unlock()
	if ao.closed {
		return errClosed
	}
	return nil
}

func (ao *AnalogOutput) send(counts uint16) error {
	return ao.daq.SendValueToDevice(commandAnalogOutput, counts, uint16(ao.channel))
}

var errClosed = errors.New("output closed")

// DigitalOutput streams a digital buffer to the 8-line port. Each sample is
// written to the output latch.
type DigitalOutput struct {
	daq   DAQer
	pacer pacer

	mu     sync.Mutex
	states []uint8
	closed bool
}

// NewDigitalOutput drives every line of the port as an output.
func NewDigitalOutput(daq DAQer) (*DigitalOutput, error) {
	if err := daq.SendValueToDevice(commandDigitalTristate, tristateAllOutputs, 0); err != nil {
		return nil, fmt.Errorf("error setting port direction: %s", err)
	}
	return &DigitalOutput{daq: daq}, nil
}

// SetTrigger accepts only a disabled trigger.
func (do *DigitalOutput) SetTrigger(trig task.Trigger) error {
	if trig.Enabled {
		return errNoTrigger
	}
	return nil
}

// ConfigureTiming sets the software sample clock.
func (do *DigitalOutput) ConfigureTiming(rate float64, mode task.SampleMode, numSamples int) error {
	if err := do.check(); err != nil {
		return err
	}
	return do.pacer.configure(rate, mode)
}

// Write keeps a copy of the port states.
func (do *DigitalOutput) Write(buf *waveform.Buffer) (int, error) {
	if err := do.check(); err != nil {
		return 0, err
	}
	if buf.Target != waveform.Digital {
		return 0, fmt.Errorf("cannot write a %s buffer to a digital output", buf.Target)
	}
	if do.pacer.running() {
		return 0, errRunning
	}
	states := append([]uint8(nil), buf.Digital...)
	do.mu.Lock()
	do.states = states
	do.mu.Unlock()
	return len(states), nil
}

// WriteValue sets the port to a constant state between 0 and 255.
func (do *DigitalOutput) WriteValue(value float64) error {
	if err := do.check(); err != nil {
		return err
	}
	if do.pacer.running() {
		return errRunning
	}
	if value != math.Trunc(value) || value < 0 || value > math.MaxUint8 {
		return fmt.Errorf("port state %g is not an integer between 0 and 255", value)
	}
	return do.send(uint8(value))
}

// Start replays the written states.
func (do *DigitalOutput) Start(ctx context.Context) error {
	if err := do.check(); err != nil {
		return err
	}
	do.mu.Lock()
	states := do.states
	do.mu.Unlock()
	return do.pacer.start(ctx, len(states), func(i int) error {
		return do.send(states[i])
	})
}

// Wait blocks until a finite output has played its buffer.
func (do *DigitalOutput) Wait(ctx context.Context) error {
	return do.pacer.wait(ctx)
}

// Stop halts the output, leaving the last state on the port.
func (do *DigitalOutput) Stop() error {
	return do.pacer.stop()
}

// Latch reads back the output latch register.
func (do *DigitalOutput) Latch() (uint8, error) {
	data := make([]byte, 1)
	if _, err := do.daq.ReadCommandFromDevice(commandDigitalLatch, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

// Close stops the output and drives every line low.
func (do *DigitalOutput) Close() error {
	do.mu.Lock()
	if do.closed {
		do.mu.Unlock()
		return errClosed
	}
	do.closed = true
	do.states = nil
	do.mu.Unlock()
	if err := do.pacer.stop(); err != nil {
		return err
	}
	return do.send(0)
}

func (do *DigitalOutput) check() error {
	do.mu.Lock()
	defer do.mu.Unlock()
	if do.closed {
		return errClosed
	}
	return nil
}

func (do *DigitalOutput) send(state uint8) error {
	return do.daq.SendValueToDevice(commandDigitalLatch, uint16(state), 0)
}

var (
	_ task.Driver = (*AnalogOutput)(nil)
	_ task.Driver = (*DigitalOutput)(nil)
)
