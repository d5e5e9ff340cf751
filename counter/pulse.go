// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package counter models the continuous pulse train produced by a counter
// output: a frequency, a duty cycle and an initial delay, converted into
// counts of a counter timebase.
package counter

import (
	"fmt"
	"math"

	"github.com/gotmc/daqwave/task"
)

const (
	// DefaultTimebase is the 40 MHz clock the MCC pacers count.
	DefaultTimebase = 40e6
	minTicks        = 2
)

// PulseTrain describes a counter output pulse train.
type PulseTrain struct {
	Frequency    float64      `json:"freq"`
	DutyCycle    float64      `json:"duty_cycle"`
	InitialDelay float64      `json:"initial_delay"`
	Trigger      task.Trigger `json:"trigger"`
}

// NewPulseTrain returns a 100 Hz square pulse train with no delay.
func NewPulseTrain() PulseTrain {
	return PulseTrain{
		Frequency: 100,
		DutyCycle: 0.5,
	}
}

// Validate checks the pulse train parameters.
func (p PulseTrain) Validate() error {
	if !(p.Frequency > 0) || math.IsInf(p.Frequency, 0) {
		return fmt.Errorf("pulse frequency must be positive, got %g", p.Frequency)
	}
	if !(p.DutyCycle > 0 && p.DutyCycle < 1) {
		return fmt.Errorf("duty cycle must be between 0 and 1, got %g", p.DutyCycle)
	}
	if !(p.InitialDelay >= 0) || math.IsInf(p.InitialDelay, 0) {
		return fmt.Errorf("initial delay must not be negative, got %g", p.InitialDelay)
	}
	return nil
}

// Period returns the pulse period in seconds.
func (p PulseTrain) Period() float64 {
	return 1 / p.Frequency
}

// HighTime returns the time the output is high in each period.
func (p PulseTrain) HighTime() float64 {
	return p.DutyCycle * p.Period()
}

// LowTime returns the time the output is low in each period.
func (p PulseTrain) LowTime() float64 {
	return (1 - p.DutyCycle) * p.Period()
}

// Ticks holds the counts of the timebase for each phase of a pulse train.
type Ticks struct {
	Delay uint32
	High  uint32
	Low   uint32
}

// Ticks converts the pulse train into counts of a timebase running at the
// given frequency. Each phase needs at least two counts.
func (p PulseTrain) Ticks(timebase float64) (Ticks, error) {
	if err := p.Validate(); err != nil {
		return Ticks{}, err
	}
	if !(timebase > 0) {
		return Ticks{}, fmt.Errorf("timebase must be positive, got %g", timebase)
	}
	high := timebase * p.HighTime()
	low := timebase * p.LowTime()
	delay := timebase * p.InitialDelay
	if high > math.MaxUint32 || low > math.MaxUint32 || delay > math.MaxUint32 {
		return Ticks{}, fmt.Errorf("pulse train too slow for a %g Hz timebase", timebase)
	}
	if round(high) < minTicks || round(low) < minTicks {
		return Ticks{}, fmt.Errorf(
			"pulse frequency %g Hz with duty cycle %g too high for a %g Hz timebase",
			p.Frequency, p.DutyCycle, timebase)
	}
	return Ticks{Delay: uint32(round(delay)), High: uint32(round(high)), Low: uint32(round(low))}, nil
}

// ActualFrequency returns the frequency the given ticks produce.
func (t Ticks) ActualFrequency(timebase float64) float64 {
	return timebase / (float64(t.High) + float64(t.Low))
}

func round(f float64) int64 {
	if math.Abs(f) < 0.5 {
		return 0
	}
	return int64(f + math.Copysign(0.5, f))
}
