// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package waveform

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	c "github.com/smartystreets/goconvey/convey"
)

func analogSpec(kind Kind, freq float64, spp, periods int, amps ...float64) Spec {
	s := DefaultSpec()
	s.Kind = kind
	s.Frequency = freq
	s.SamplesPerPeriod = spp
	s.NumPeriods = periods
	s.Amplitudes = amps
	return s
}

func digitalSpec(kind Kind, freq float64, spp, periods int) Spec {
	s := DefaultSpec()
	s.Kind = kind
	s.Target = Digital
	s.Frequency = freq
	s.SamplesPerPeriod = spp
	s.NumPeriods = periods
	s.Amplitudes = nil
	return s
}

func TestBufferLength(t *testing.T) {
	testCases := []Spec{
		analogSpec(Sine, 50, 100, 1, 1),
		analogSpec(Rect, 100, 200, 3, 2.5),
		analogSpec(Step, 1000, 2, 7, 1),
		analogSpec(Triangle, 10, 33, 4, 1),
		digitalSpec(Rect, 200, 1000, 3),
		digitalSpec(CustomDigitalLines, 200, 1000, 3),
	}
	c.Convey("Given the need to generate sample buffers", t, func() {
		for _, spec := range testCases {
			conveyance := fmt.Sprintf(
				"When generating %d periods of %d samples of a %s %s waveform",
				spec.NumPeriods, spec.SamplesPerPeriod, spec.Target, spec.Kind)
			c.Convey(conveyance, func() {
				buf, err := Generate(spec)
				c.So(err, c.ShouldBeNil)
				conveyance := fmt.Sprintf("Then the buffer should hold %d samples", spec.NumSamples())
				c.Convey(conveyance, func() {
					c.So(buf.Len(), c.ShouldEqual, spec.NumPeriods*spec.SamplesPerPeriod)
					c.So(buf.Rate, c.ShouldEqual, spec.Frequency*float64(spec.SamplesPerPeriod))
				})
			})
		}
	})
}

func TestDeterministicGeneration(t *testing.T) {
	c.Convey("Given a spiked step waveform with an offset", t, func() {
		spec := analogSpec(Step, 100, 100, 6, 1)
		spec.SpikeAmplitude = 1
		spec.SpikeDuration = 0.0005
		spec.Offset = -0.25
		c.Convey("When it is generated twice", func() {
			first, err := Generate(spec)
			c.So(err, c.ShouldBeNil)
			second, err := Generate(spec)
			c.So(err, c.ShouldBeNil)
			c.Convey("Then both buffers should be identical", func() {
				c.So(second, c.ShouldResemble, first)
			})
		})
	})
}

func TestAnalogRateCeiling(t *testing.T) {
	c.Convey("Given a frequency of 2600 Hz with 100 samples per period", t, func() {
		spec := analogSpec(Sine, 2600, 100, 1, 1)
		c.Convey("When generating for an analog output", func() {
			buf, err := Generate(spec)
			c.Convey("Then a configuration error should be returned without a buffer", func() {
				var cfgErr *ConfigurationError
				c.So(errors.As(err, &cfgErr), c.ShouldBeTrue)
				c.So(cfgErr.Field, c.ShouldEqual, "rate")
				c.So(buf, c.ShouldBeNil)
			})
		})
		c.Convey("When generating for a digital output", func() {
			spec := digitalSpec(Rect, 2600, 100, 1)
			buf, err := Generate(spec)
			c.Convey("Then no ceiling should be enforced", func() {
				c.So(err, c.ShouldBeNil)
				c.So(buf.Rate, c.ShouldEqual, 260000)
			})
		})
	})
}

func TestSine(t *testing.T) {
	c.Convey("Given one period of a 50 Hz unit sine at 100 samples per period", t, func() {
		buf, err := Generate(analogSpec(Sine, 50, 100, 1, 1))
		c.So(err, c.ShouldBeNil)
		c.Convey("Then the buffer should hold 100 samples", func() {
			c.So(buf.Analog, c.ShouldHaveLength, 100)
		})
		c.Convey("Then the first sample should be close to zero", func() {
			c.So(math.Abs(buf.Analog[0]), c.ShouldBeLessThan, 1e-6)
		})
		c.Convey("Then the extremes should be close to the amplitude", func() {
			c.So(buf.Peak(), c.ShouldAlmostEqual, 1, 1e-9)
			c.So(buf.Trough(), c.ShouldAlmostEqual, -1, 1e-9)
		})
	})
}

func TestRectDutyCycle(t *testing.T) {
	c.Convey("Given one period of a 50 Hz unit rect at 100 samples per period", t, func() {
		buf, err := Generate(analogSpec(Rect, 50, 100, 1, 1))
		c.So(err, c.ShouldBeNil)
		c.Convey("Then half the samples should be high and half low", func() {
			high, low := 0, 0
			for _, v := range buf.Analog {
				switch v {
				case 1:
					high++
				case 0:
					low++
				}
			}
			c.So(high, c.ShouldEqual, 50)
			c.So(low, c.ShouldEqual, 50)
			c.So(buf.Analog[0], c.ShouldEqual, 1)
			c.So(buf.Analog[99], c.ShouldEqual, 0)
		})
	})
}

func TestStepStaircase(t *testing.T) {
	c.Convey("Given a 3 level step waveform over 6 periods", t, func() {
		spec := analogSpec(Step, 100, 10, 6, 0.5)
		spec.NumSteps = 3
		buf, err := Generate(spec)
		c.So(err, c.ShouldBeNil)
		c.Convey("Then each period should hold a single level that resets every 3 periods", func() {
			expected := []float64{0, 0.5, 1, 0, 0.5, 1}
			for p, level := range expected {
				for _, v := range buf.Analog[p*10 : (p+1)*10] {
					c.So(v, c.ShouldEqual, level)
				}
			}
		})
	})
}

func TestCustomStepThresholds(t *testing.T) {
	c.Convey("Given a custom step with amplitudes 1 and 0.5 over 3 steps", t, func() {
		spec := analogSpec(CustomStep, 100, 99, 3, 1, 0.5)
		spec.NumSteps = 3
		buf, err := Generate(spec)
		c.So(err, c.ShouldBeNil)
		c.So(buf.Analog, c.ShouldHaveLength, 297)
		c.Convey("Then the staircase should climb 0, 1, 1.5 in thirds", func() {
			for i, v := range buf.Analog {
				switch {
				case i < 99:
					c.So(v, c.ShouldEqual, 0)
				case i < 198:
					c.So(v, c.ShouldEqual, 1)
				default:
					c.So(v, c.ShouldEqual, 1.5)
				}
			}
		})
	})
}

func TestSpikeSuperposition(t *testing.T) {
	c.Convey("Given a rect waveform with a spike covering 10% of each period", t, func() {
		plainSpec := analogSpec(Rect, 50, 100, 3, 1)
		spikedSpec := plainSpec
		spikedSpec.SpikeAmplitude = 0.2
		spikedSpec.SpikeDuration = 0.1 / plainSpec.Frequency
		plain, err := Generate(plainSpec)
		c.So(err, c.ShouldBeNil)
		spiked, err := Generate(spikedSpec)
		c.So(err, c.ShouldBeNil)
		c.Convey("Then every period should carry 10 spiked samples at its start", func() {
			for p := 0; p < plainSpec.NumPeriods; p++ {
				count := 0
				for i := p * 100; i < (p+1)*100; i++ {
					diff := spiked.Analog[i] - plain.Analog[i]
					if diff != 0 {
						c.So(diff, c.ShouldAlmostEqual, 0.2, 1e-12)
						count++
					}
				}
				c.So(count, c.ShouldBeBetweenOrEqual, 9, 11)
				c.So(spiked.Analog[p*100], c.ShouldAlmostEqual, 1.2, 1e-12)
			}
		})
	})
}

func TestOffset(t *testing.T) {
	c.Convey("Given a sine with an offset of 2 V", t, func() {
		spec := analogSpec(Sine, 50, 100, 2, 1)
		plain, err := Generate(spec)
		c.So(err, c.ShouldBeNil)
		spec.Offset = 2
		shifted, err := Generate(spec)
		c.So(err, c.ShouldBeNil)
		c.Convey("Then every sample should be shifted by the offset", func() {
			for i := range plain.Analog {
				c.So(shifted.Analog[i], c.ShouldAlmostEqual, plain.Analog[i]+2, 1e-12)
			}
		})
	})
}

func TestTriangleAndSquare(t *testing.T) {
	c.Convey("Given one period of 2 V triangle and square waveforms", t, func() {
		tri, err := Generate(analogSpec(Triangle, 50, 100, 1, 2))
		c.So(err, c.ShouldBeNil)
		sq, err := Generate(analogSpec(Square, 50, 100, 1, 2))
		c.So(err, c.ShouldBeNil)
		c.Convey("Then the triangle should start at the trough and peak mid-cycle", func() {
			c.So(tri.Analog[0], c.ShouldAlmostEqual, -2, 1e-6)
			c.So(tri.Analog[50], c.ShouldAlmostEqual, 2, 1e-5)
			c.So(tri.Peak(), c.ShouldAlmostEqual, 2, 1e-5)
			c.So(tri.Trough(), c.ShouldAlmostEqual, -2, 1e-6)
		})
		c.Convey("Then the square should alternate between +2 and -2", func() {
			for i, v := range sq.Analog {
				if i < 50 {
					c.So(v, c.ShouldEqual, 2)
				} else {
					c.So(v, c.ShouldEqual, -2)
				}
			}
		})
	})
}

func TestDigitalRect(t *testing.T) {
	c.Convey("Given a digital rect driving all 8 port lines", t, func() {
		spec := digitalSpec(Rect, 200, 100, 2)
		spec.Lines = 8
		buf, err := Generate(spec)
		c.So(err, c.ShouldBeNil)
		c.Convey("Then the samples should be 255 for half of each period and 0 otherwise", func() {
			c.So(buf.Analog, c.ShouldBeNil)
			high := 0
			for _, v := range buf.Digital {
				c.So(v == 0 || v == 255, c.ShouldBeTrue)
				if v == 255 {
					high++
				}
			}
			c.So(high, c.ShouldEqual, 100)
		})
	})
	c.Convey("Given a digital rect on a single line", t, func() {
		buf, err := Generate(digitalSpec(Rect, 200, 100, 1))
		c.So(err, c.ShouldBeNil)
		c.Convey("Then the samples should be booleans", func() {
			c.So(buf.Digital[0], c.ShouldEqual, 1)
			c.So(buf.Digital[99], c.ShouldEqual, 0)
		})
	})
}

func TestDigitalBitPacking(t *testing.T) {
	c.Convey("Given custom digital lines with widths 0.5 and 0.1", t, func() {
		spec := digitalSpec(CustomDigitalLines, 200, 1000, 3)
		spec.LineWidths = []float64{0.5, 0.1}
		buf, err := Generate(spec)
		c.So(err, c.ShouldBeNil)
		c.Convey("Then every packed sample should match the independently computed lines", func() {
			period := 1 / spec.Frequency
			dt := 1 / spec.Rate()
			seen := map[uint8]bool{}
			for k, got := range buf.Digital {
				tk := float64(k)*dt + Epsilon
				line0 := math.Mod(tk, period) < 0.5*period
				line1 := math.Mod(tk, period) < 0.1*period
				line2 := !line0
				line3 := line0 && line1
				var want uint8
				for i, high := range []bool{line0, line1, line2, line3} {
					if high {
						want += 1 << uint(i)
					}
				}
				c.So(got, c.ShouldEqual, want)
				seen[got] = true
			}
			c.So(seen, c.ShouldResemble, map[uint8]bool{1: true, 4: true, 11: true})
		})
	})
}

func TestPackLines(t *testing.T) {
	testCases := []struct {
		lines    []bool
		expected uint8
	}{
		{[]bool{}, 0x00},
		{[]bool{true}, 0x01},
		{[]bool{false, true}, 0x02},
		{[]bool{true, false, true, true}, 0x0d},
		{[]bool{true, true, true, true, true, true, true, true}, 0xff},
		{[]bool{false, false, false, false, false, false, false, false, true}, 0x00},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("pack %v", tc.lines), func(t *testing.T) {
			t.Parallel()
			computed := PackLines(tc.lines)
			if computed != tc.expected {
				t.Errorf("Expected %#x, got %#x", tc.expected, computed)
			}
		})
	}
}

func TestInvalidSpecs(t *testing.T) {
	tooManyAmps := analogSpec(CustomStep, 100, 100, 3, 1, 0.5, 0.25)
	tooManyAmps.NumSteps = 3
	badWidth := digitalSpec(CustomDigitalLines, 100, 100, 3)
	badWidth.LineWidths = []float64{0.5, 1.5}
	digitalSpike := digitalSpec(Rect, 100, 100, 1)
	digitalSpike.SpikeAmplitude = 0.1
	tooManyLines := digitalSpec(Rect, 100, 100, 1)
	tooManyLines.Lines = 9
	negativeSpike := analogSpec(Rect, 100, 100, 1, 1)
	negativeSpike.SpikeDuration = -1
	unknown := analogSpec(Kind(42), 100, 100, 1, 1)
	overflow := digitalSpec(Rect, 100, 4, 1)
	overflow.NumPeriods = math.MaxInt / 2
	tooLong := digitalSpec(Rect, 100, 1<<20, 1<<10)
	testCases := []struct {
		name  string
		spec  Spec
		field string
	}{
		{"unknown kind", unknown, "kind"},
		{"zero frequency", analogSpec(Sine, 0, 100, 1, 1), "frequency"},
		{"negative frequency", analogSpec(Sine, -5, 100, 1, 1), "frequency"},
		{"one sample per period", analogSpec(Sine, 50, 1, 1, 1), "samples_per_period"},
		{"no periods", analogSpec(Sine, 50, 100, 0, 1), "num_periods"},
		{"no amplitude", analogSpec(Sine, 50, 100, 1), "amplitudes"},
		{"too many custom amplitudes", tooManyAmps, "amplitudes"},
		{"digital lines on analog", analogSpec(CustomDigitalLines, 50, 100, 1, 1), "kind"},
		{"sine on digital", digitalSpec(Sine, 50, 100, 1), "kind"},
		{"width out of range", badWidth, "line_widths"},
		{"spike on digital", digitalSpike, "spike_amplitude"},
		{"too many lines", tooManyLines, "lines"},
		{"negative spike", negativeSpike, "spike"},
		{"sample count overflow", overflow, "num_periods"},
		{"too many samples", tooLong, "num_periods"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf, err := Generate(tc.spec)
			if buf != nil {
				t.Errorf("Expected no buffer, got %d samples", buf.Len())
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected a ConfigurationError, got `%v`", err)
			}
			if cfgErr.Field != tc.field {
				t.Errorf("Expected field `%s`, got `%s`", tc.field, cfgErr.Field)
			}
		})
	}
}

func TestBufferDuration(t *testing.T) {
	buf := &Buffer{Target: Analog, Rate: 5000, Analog: make([]float64, 100)}
	if got := buf.Duration(); got != 20*time.Millisecond {
		t.Errorf("Expected 20ms, got %v", got)
	}
	empty := &Buffer{Target: Digital}
	if got := empty.Duration(); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
	if got := empty.Peak(); got != 0 {
		t.Errorf("Expected 0 peak, got %v", got)
	}
}

func TestBufferClone(t *testing.T) {
	c.Convey("Given a generated digital buffer", t, func() {
		buf, err := Generate(digitalSpec(Rect, 100, 10, 2))
		c.So(err, c.ShouldBeNil)
		c.Convey("When the clone is modified", func() {
			cp := buf.Clone()
			c.So(cp, c.ShouldResemble, buf)
			cp.Digital[0] ^= 0xff
			cp.Rate = 1
			c.Convey("Then the original is unchanged", func() {
				c.So(buf.Digital[0], c.ShouldNotEqual, cp.Digital[0])
				c.So(buf.Rate, c.ShouldEqual, 1000)
				c.So(buf.Analog, c.ShouldBeNil)
			})
		})
	})
}
