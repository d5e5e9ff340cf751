// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package waveform

import "math"

const (
	// MaxAnalogRate is the analog output sample clock ceiling in samples/s.
	MaxAnalogRate = 250000
	// MaxLines is the width of a digital output port.
	MaxLines = 8
	// MaxSamples caps the length of a generated buffer.
	MaxSamples = 1 << 26
	// Epsilon shifts every sample time forward so that samples landing on a
	// period boundary fall on the start of the next cycle.
	Epsilon = 1e-9
)

// Spec describes one waveform generation request.
type Spec struct {
	Kind             Kind      `json:"waveform"`
	Target           Target    `json:"target"`
	Frequency        float64   `json:"frequency"`
	NumPeriods       int       `json:"num_periods"`
	SamplesPerPeriod int       `json:"samples_per_period"`
	Amplitudes       []float64 `json:"amplitudes"`
	NumSteps         int       `json:"steps"`
	Offset           float64   `json:"offset"`
	SpikeAmplitude   float64   `json:"spike_amplitude"`
	SpikeDuration    float64   `json:"spike_duration"`
	LineWidths       []float64 `json:"line_widths"`
	Lines            int       `json:"lines"`
}

// DefaultSpec returns the settings an output starts with.
func DefaultSpec() Spec {
	return Spec{
		Kind:             Sine,
		Target:           Analog,
		Frequency:        100,
		NumPeriods:       3,
		SamplesPerPeriod: 200,
		Amplitudes:       []float64{1},
		NumSteps:         3,
		LineWidths:       []float64{0.5, 0.1},
		Lines:            1,
	}
}

// Rate returns the sample clock rate in samples/s.
func (s Spec) Rate() float64 {
	return s.Frequency * float64(s.SamplesPerPeriod)
}

// NumSamples returns the number of samples Generate produces.
func (s Spec) NumSamples() int {
	return s.NumPeriods * s.SamplesPerPeriod
}

// Period returns the duration of one cycle in seconds.
func (s Spec) Period() float64 {
	return 1 / s.Frequency
}

// Amplitude returns the primary amplitude, or zero if none is set.
func (s Spec) Amplitude() float64 {
	if len(s.Amplitudes) == 0 {
		return 0
	}
	return s.Amplitudes[0]
}

// Validate checks the spec for the target it names. The returned error is
// always a *ConfigurationError.
func (s Spec) Validate() error {
	if _, ok := kindNames[s.Kind]; !ok {
		return configErr("kind", s.Kind, "unknown waveform")
	}
	if s.Target != Analog && s.Target != Digital {
		return configErr("target", s.Target, "unknown output target")
	}
	if !s.Kind.Supports(s.Target) {
		return configErr("kind", s.Kind, "not available for %s outputs", s.Target)
	}
	if !(s.Frequency > 0) || math.IsInf(s.Frequency, 0) {
		return configErr("frequency", s.Frequency, "must be positive")
	}
	if s.SamplesPerPeriod < 2 {
		return configErr("samples_per_period", s.SamplesPerPeriod, "must be at least 2")
	}
	if s.NumPeriods < 1 {
		return configErr("num_periods", s.NumPeriods, "must be at least 1")
	}
	if s.NumPeriods > math.MaxInt/s.SamplesPerPeriod || s.NumSamples() > MaxSamples {
		return configErr("num_periods", s.NumPeriods,
			"%d periods of %d samples exceed %d samples", s.NumPeriods, s.SamplesPerPeriod, MaxSamples)
	}
	if s.Target == Analog && s.Rate() >= MaxAnalogRate {
		return configErr("rate", s.Rate(), "frequency too high, analog output rate must be below %d", MaxAnalogRate)
	}
	if s.SpikeAmplitude < 0 || s.SpikeDuration < 0 {
		return configErr("spike", s.SpikeAmplitude, "spike amplitude and duration must not be negative")
	}
	if s.Target == Digital {
		if s.SpikeAmplitude > 0 {
			return configErr("spike_amplitude", s.SpikeAmplitude, "spikes apply to analog outputs only")
		}
		if s.Offset != 0 {
			return configErr("offset", s.Offset, "offset applies to analog outputs only")
		}
	}

	switch s.Kind {
	case Sine, Rect, Triangle, Square:
		if s.Target == Analog && len(s.Amplitudes) == 0 {
			return configErr("amplitudes", s.Amplitudes, "%s needs an amplitude", s.Kind)
		}
	case Step:
		if s.NumSteps < 1 {
			return configErr("steps", s.NumSteps, "must be at least 1")
		}
		if s.Target == Analog && len(s.Amplitudes) == 0 {
			return configErr("amplitudes", s.Amplitudes, "step needs an amplitude")
		}
	case CustomStep:
		if s.NumSteps < 2 {
			return configErr("steps", s.NumSteps, "custom-step needs at least 2 steps")
		}
		if len(s.Amplitudes) < 1 || len(s.Amplitudes) > s.NumSteps-1 {
			return configErr("amplitudes", s.Amplitudes,
				"custom-step needs between 1 and %d amplitudes", s.NumSteps-1)
		}
	case CustomDigitalLines:
		if len(s.LineWidths) != 2 {
			return configErr("line_widths", s.LineWidths, "exactly 2 line widths are required")
		}
		for _, w := range s.LineWidths {
			if !(w > 0 && w <= 1) {
				return configErr("line_widths", s.LineWidths, "widths must be in (0, 1]")
			}
		}
	}

	if s.Target == Digital && (s.Kind == Rect || s.Kind == Step) {
		if s.Lines < 1 || s.Lines > MaxLines {
			return configErr("lines", s.Lines, "must be between 1 and %d", MaxLines)
		}
	}
	return nil
}
