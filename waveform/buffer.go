// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package waveform

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// Buffer holds the generated samples and the sample clock rate they are to
// be played at. Exactly one of Analog or Digital is populated, depending on
// Target. Digital samples are port bytes with line i in bit i.
type Buffer struct {
	Target  Target
	Rate    float64
	Analog  []float64
	Digital []uint8
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	cp := &Buffer{Target: b.Target, Rate: b.Rate}
	if b.Analog != nil {
		cp.Analog = append([]float64(nil), b.Analog...)
	}
	if b.Digital != nil {
		cp.Digital = append([]uint8(nil), b.Digital...)
	}
	return cp
}

// Len returns the number of samples in the buffer.
func (b *Buffer) Len() int {
	if b.Target == Digital {
		return len(b.Digital)
	}
	return len(b.Analog)
}

// Duration returns the time needed to play the buffer once.
func (b *Buffer) Duration() time.Duration {
	if b.Rate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Len()) / b.Rate * float64(time.Second))
}

// Peak returns the largest analog sample, or zero for an empty or digital
// buffer.
func (b *Buffer) Peak() float64 {
	if len(b.Analog) == 0 {
		return 0
	}
	return floats.Max(b.Analog)
}

// Trough returns the smallest analog sample, or zero for an empty or digital
// buffer.
func (b *Buffer) Trough() float64 {
	if len(b.Analog) == 0 {
		return 0
	}
	return floats.Min(b.Analog)
}
