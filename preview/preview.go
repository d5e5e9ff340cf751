// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package preview plays back generated analog buffers as audio, either as a
// beep.Streamer or as a WAV file.
package preview

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/gotmc/daqwave/waveform"
)

// Precision is the number of bytes per WAV sample.
const Precision = 2

var errDigital = errors.New("preview: only analog buffers can be previewed")

type bufferStreamer struct {
	samples   []float64
	fullScale float64
	pos       int
}

// NewStreamer returns a streamer that emits the analog buffer once, on both
// channels. Samples are divided by the largest magnitude in the buffer so the
// stream stays within [-1, 1].
func NewStreamer(buf *waveform.Buffer) (beep.Streamer, error) {
	if buf.Target != waveform.Analog {
		return nil, errDigital
	}
	return &bufferStreamer{samples: buf.Analog, fullScale: FullScale(buf)}, nil
}

// FullScale returns the largest sample magnitude of an analog buffer, or 1
// for a silent one.
func FullScale(buf *waveform.Buffer) float64 {
	fs := math.Max(math.Abs(buf.Peak()), math.Abs(buf.Trough()))
	if fs == 0 {
		return 1
	}
	return fs
}

func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	for i := range samples {
		if s.pos >= len(s.samples) {
			break
		}
		v := s.samples[s.pos] / s.fullScale
		samples[i][0] = v
		samples[i][1] = v
		s.pos++
		n++
	}
	return n, true
}

func (*bufferStreamer) Err() error {
	return nil
}

// Format returns the WAV format of an analog buffer.
func Format(buf *waveform.Buffer) (beep.Format, error) {
	sr := beep.SampleRate(math.Round(buf.Rate))
	if sr <= 0 {
		return beep.Format{}, fmt.Errorf("preview: sample rate %g S/s too low", buf.Rate)
	}
	return beep.Format{SampleRate: sr, NumChannels: 2, Precision: Precision}, nil
}

// WriteWAV encodes the analog buffer as a WAV file at its sample rate.
func WriteWAV(w io.WriteSeeker, buf *waveform.Buffer) error {
	s, err := NewStreamer(buf)
	if err != nil {
		return err
	}
	format, err := Format(buf)
	if err != nil {
		return err
	}
	return wav.Encode(w, s, format)
}
