// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/gotmc/daqwave/counter"
	"github.com/gotmc/daqwave/task"
	"github.com/gotmc/daqwave/waveform"
	"github.com/spf13/viper"
)

type waveformConfig struct {
	Kind             string    `mapstructure:"kind"`
	Target           string    `mapstructure:"target"`
	Frequency        float64   `mapstructure:"frequency"`
	NumPeriods       int       `mapstructure:"num_periods"`
	SamplesPerPeriod int       `mapstructure:"samples_per_period"`
	Amplitudes       []float64 `mapstructure:"amplitudes"`
	NumSteps         int       `mapstructure:"steps"`
	Offset           float64   `mapstructure:"offset"`
	SpikeAmplitude   float64   `mapstructure:"spike_amplitude"`
	SpikeDuration    float64   `mapstructure:"spike_duration"`
	LineWidths       []float64 `mapstructure:"line_widths"`
	Lines            int       `mapstructure:"lines"`
}

type triggerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Source  string `mapstructure:"source"`
	Edge    string `mapstructure:"edge"`
}

type outputConfig struct {
	Device   string        `mapstructure:"device"`
	Serial   string        `mapstructure:"sn"`
	Channel  int           `mapstructure:"channel"`
	Mode     string        `mapstructure:"mode"`
	Duration float64       `mapstructure:"duration"`
	Trigger  triggerConfig `mapstructure:"trigger"`
	Npy      string        `mapstructure:"npy"`
	Wav      string        `mapstructure:"wav"`
}

type counterConfig struct {
	Frequency    float64       `mapstructure:"frequency"`
	DutyCycle    float64       `mapstructure:"duty_cycle"`
	InitialDelay float64       `mapstructure:"initial_delay"`
	Trigger      triggerConfig `mapstructure:"trigger"`
}

type fileConfig struct {
	Waveform waveformConfig `mapstructure:"waveform"`
	Output   outputConfig   `mapstructure:"output"`
	Counter  counterConfig  `mapstructure:"counter"`
}

// settings is the decoded configuration of one wavegen run.
type settings struct {
	Spec     waveform.Spec
	Device   string
	Serial   string
	Channel  int
	Mode     task.SampleMode
	Trigger  task.Trigger
	Duration time.Duration
	Npy      string
	Wav      string
	Pulse    counter.PulseTrain
}

// newViper returns a viper instance holding the default settings.
func newViper() *viper.Viper {
	v := viper.New()
	spec := waveform.DefaultSpec()
	v.SetDefault("waveform.kind", spec.Kind.String())
	v.SetDefault("waveform.target", spec.Target.String())
	v.SetDefault("waveform.frequency", spec.Frequency)
	v.SetDefault("waveform.num_periods", spec.NumPeriods)
	v.SetDefault("waveform.samples_per_period", spec.SamplesPerPeriod)
	v.SetDefault("waveform.amplitudes", spec.Amplitudes)
	v.SetDefault("waveform.steps", spec.NumSteps)
	v.SetDefault("waveform.line_widths", spec.LineWidths)
	v.SetDefault("waveform.lines", spec.Lines)
	v.SetDefault("output.device", "none")
	v.SetDefault("output.mode", task.Continuous.String())
	v.SetDefault("output.trigger.edge", task.Rising.String())
	pulse := counter.NewPulseTrain()
	v.SetDefault("counter.frequency", pulse.Frequency)
	v.SetDefault("counter.duty_cycle", pulse.DutyCycle)
	v.SetDefault("counter.trigger.edge", task.Rising.String())
	return v
}

// readConfigFile merges the given YAML, JSON or TOML file into v.
func readConfigFile(v *viper.Viper, filename string) error {
	if filename == "" {
		return nil
	}
	v.SetConfigFile(filename)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %s", err)
	}
	return nil
}

// flagKeys maps command line flags to the settings they override.
var flagKeys = map[string]string{
	"kind":     "waveform.kind",
	"target":   "waveform.target",
	"freq":     "waveform.frequency",
	"periods":  "waveform.num_periods",
	"spp":      "waveform.samples_per_period",
	"offset":   "waveform.offset",
	"npy":      "output.npy",
	"wav":      "output.wav",
	"device":   "output.device",
	"sn":       "output.sn",
	"channel":  "output.channel",
	"mode":     "output.mode",
	"duration": "output.duration",
}

// applyFlags overrides v with the flags set on the command line.
func applyFlags(v *viper.Viper, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		if f.Name == "amplitude" {
			v.Set("waveform.amplitudes", []float64{getter.Get().(float64)})
			return
		}
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, getter.Get())
		}
	})
}

// decodeSettings unmarshals v and parses its enumerated values.
func decodeSettings(v *viper.Viper) (settings, error) {
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return settings{}, fmt.Errorf("error decoding config: %s", err)
	}
	spec, err := fc.Waveform.spec()
	if err != nil {
		return settings{}, err
	}
	mode, err := task.ParseSampleMode(fc.Output.Mode)
	if err != nil {
		return settings{}, err
	}
	trig, err := fc.Output.Trigger.trigger()
	if err != nil {
		return settings{}, err
	}
	pulseTrig, err := fc.Counter.Trigger.trigger()
	if err != nil {
		return settings{}, err
	}
	if fc.Output.Duration < 0 {
		return settings{}, fmt.Errorf("duration must not be negative, got %g s", fc.Output.Duration)
	}
	return settings{
		Spec:     spec,
		Device:   strings.ToLower(fc.Output.Device),
		Serial:   fc.Output.Serial,
		Channel:  fc.Output.Channel,
		Mode:     mode,
		Trigger:  trig,
		Duration: time.Duration(fc.Output.Duration * float64(time.Second)),
		Npy:      fc.Output.Npy,
		Wav:      fc.Output.Wav,
		Pulse: counter.PulseTrain{
			Frequency:    fc.Counter.Frequency,
			DutyCycle:    fc.Counter.DutyCycle,
			InitialDelay: fc.Counter.InitialDelay,
			Trigger:      pulseTrig,
		},
	}, nil
}

func (tc triggerConfig) trigger() (task.Trigger, error) {
	edge, err := task.ParseEdge(tc.Edge)
	if err != nil {
		return task.Trigger{}, err
	}
	return task.Trigger{Enabled: tc.Enabled, Source: tc.Source, Edge: edge}, nil
}

func (wc waveformConfig) spec() (waveform.Spec, error) {
	kind, err := waveform.ParseKind(wc.Kind)
	if err != nil {
		return waveform.Spec{}, err
	}
	target, err := waveform.ParseTarget(wc.Target)
	if err != nil {
		return waveform.Spec{}, err
	}
	return waveform.Spec{
		Kind:             kind,
		Target:           target,
		Frequency:        wc.Frequency,
		NumPeriods:       wc.NumPeriods,
		SamplesPerPeriod: wc.SamplesPerPeriod,
		Amplitudes:       wc.Amplitudes,
		NumSteps:         wc.NumSteps,
		Offset:           wc.Offset,
		SpikeAmplitude:   wc.SpikeAmplitude,
		SpikeDuration:    wc.SpikeDuration,
		LineWidths:       wc.LineWidths,
		Lines:            wc.Lines,
	}, nil
}
