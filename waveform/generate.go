// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package waveform

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

const rectWidth = 0.5

// Generate creates the sample buffer described by spec. It has no side
// effects: identical specs always yield identical buffers. If the spec is
// invalid a *ConfigurationError is returned and no buffer is created.
func Generate(spec Spec) (*Buffer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	t := timeAxis(spec)
	buf := &Buffer{
		Target: spec.Target,
		Rate:   spec.Rate(),
	}
	var err error
	switch spec.Target {
	case Analog:
		buf.Analog, err = analogSamples(spec, t)
	case Digital:
		buf.Digital, err = digitalSamples(spec, t)
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// timeAxis returns t[k] = k*dt + Epsilon for every sample of the spec.
func timeAxis(spec Spec) []float64 {
	dt := 1 / spec.Rate()
	t := make([]float64, spec.NumSamples())
	for k := range t {
		t[k] = float64(k) * dt
	}
	floats.AddConst(Epsilon, t)
	return t
}

func analogSamples(s Spec, t []float64) ([]float64, error) {
	period := s.Period()
	unit := make([]float64, len(t))
	out := make([]float64, len(t))

	switch s.Kind {
	case Sine:
		for i, ti := range t {
			unit[i] = math.Sin(2 * math.Pi * ti / period)
		}
		vecmath.ScaleBlock(out, unit, s.Amplitude())
	case Rect:
		for i, ti := range t {
			if rect(ti, period, rectWidth) {
				unit[i] = 1
			}
		}
		vecmath.ScaleBlock(out, unit, s.Amplitude())
	case Step:
		for i, ti := range t {
			unit[i] = float64(cycle(ti, period, s.NumSteps))
		}
		vecmath.ScaleBlock(out, unit, s.Amplitude())
	case CustomStep:
		// Level j is added once the cycle index passes j.
		for i, ti := range t {
			c := cycle(ti, period, s.NumSteps)
			for j, amp := range s.Amplitudes {
				if c > j {
					out[i] += amp
				}
			}
		}
	case Triangle:
		for i, ti := range t {
			p := math.Mod(ti, period) / period
			if p < rectWidth {
				unit[i] = -1 + 4*p
			} else {
				unit[i] = 3 - 4*p
			}
		}
		vecmath.ScaleBlock(out, unit, s.Amplitude())
	case Square:
		for i, ti := range t {
			unit[i] = -1
			if rect(ti, period, rectWidth) {
				unit[i] = 1
			}
		}
		vecmath.ScaleBlock(out, unit, s.Amplitude())
	default:
		return nil, configErr("kind", s.Kind, "not available for analog outputs")
	}

	if s.SpikeAmplitude > 0 {
		spike := make([]float64, len(t))
		for i, ti := range t {
			if math.Mod(ti, period) < s.SpikeDuration {
				spike[i] = s.SpikeAmplitude
			}
		}
		vecmath.AddBlockInPlace(out, spike)
	}
	floats.AddConst(s.Offset, out)
	return out, nil
}

func digitalSamples(s Spec, t []float64) ([]uint8, error) {
	period := s.Period()
	out := make([]uint8, len(t))
	high := uint8(1<<uint(s.Lines) - 1)

	switch s.Kind {
	case Rect:
		for i, ti := range t {
			if rect(ti, period, rectWidth) {
				out[i] = high
			}
		}
	case Step:
		for i, ti := range t {
			if cycle(ti, period, s.NumSteps) != 0 {
				out[i] = high
			}
		}
	case CustomDigitalLines:
		var lines [4]bool
		for i, ti := range t {
			lines[0] = rect(ti, period, s.LineWidths[0])
			lines[1] = rect(ti, period, s.LineWidths[1])
			lines[2] = !lines[0]
			lines[3] = lines[0] && lines[1]
			out[i] = PackLines(lines[:])
		}
	default:
		return nil, configErr("kind", s.Kind, "not available for digital outputs")
	}
	return out, nil
}

// PackLines packs boolean line states into a port byte, line i in bit i.
// Lines past the port width are ignored.
func PackLines(lines []bool) uint8 {
	var b uint8
	for i, high := range lines {
		if high && i < MaxLines {
			b |= 0x1 << uint(i)
		}
	}
	return b
}

// rect reports whether t falls in the high part of a rectangular signal with
// the given duty cycle.
func rect(t, period, width float64) bool {
	return math.Mod(t, period) < width*period
}

// cycle returns the index of the cycle containing t, modulo steps.
func cycle(t, period float64, steps int) int {
	return int(math.Floor(t/period)) % steps
}
