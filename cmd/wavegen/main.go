// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command wavegen generates a waveform buffer, exports it and optionally
// streams it to a simulated or USB-20X output.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gotmc/daqwave/counter"
	"github.com/gotmc/daqwave/preview"
	"github.com/gotmc/daqwave/task"
	"github.com/gotmc/daqwave/usb20x"
	"github.com/gotmc/daqwave/waveform"
	"github.com/sbinet/npyio"
	"gopkg.in/natefinch/lumberjack.v2"
)

func defineFlags(fs *flag.FlagSet) {
	spec := waveform.DefaultSpec()
	fs.String("config", "", "YAML, JSON or TOML config file")
	fs.String("kind", spec.Kind.String(), "waveform: sine, rect, step, custom-step, custom-digital-lines, triangle or square")
	fs.String("target", spec.Target.String(), "output target: analog or digital")
	fs.Float64("freq", spec.Frequency, "waveform frequency in Hz")
	fs.Int("periods", spec.NumPeriods, "number of periods in the buffer")
	fs.Int("spp", spec.SamplesPerPeriod, "samples per period")
	fs.Float64("amplitude", spec.Amplitude(), "primary amplitude in V")
	fs.Float64("offset", 0, "DC offset in V (analog only)")
	fs.String("npy", "", "write the buffer to this .npy file")
	fs.String("wav", "", "write an analog buffer to this .wav file")
	fs.String("device", "none", "stream to device: none, sim or usb20x")
	fs.String("sn", "", "serial number of the USB-20X (default first found)")
	fs.Int("channel", 0, "USB-20X analog output channel")
	fs.String("mode", task.Continuous.String(), "sample mode: continuous or finite")
	fs.Float64("duration", 0, "seconds to stream a continuous output (0 until interrupted)")
	fs.Bool("pulse", false, "print the counter ticks of the configured pulse train")
	fs.Bool("verbose", false, "dump the decoded settings")
	fs.String("log", "", "log to this file, rotated")
}

// startLogger returns a logger writing to stderr and to a rotated file.
func startLogger(filename string) *log.Logger {
	return log.New(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10,  // megabytes after which new file is created
		MaxBackups: 4,   // number of backups
		MaxAge:     180, // days
		Compress:   true,
	}), "", log.LstdFlags)
}

func main() {
	fs := flag.NewFlagSet("wavegen", flag.ExitOnError)
	defineFlags(fs)
	fs.Parse(os.Args[1:])

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if name := fs.Lookup("log").Value.String(); name != "" {
		logger = startLogger(name)
	}

	v := newViper()
	if err := readConfigFile(v, fs.Lookup("config").Value.String()); err != nil {
		logger.Fatal(err)
	}
	applyFlags(v, fs)
	s, err := decodeSettings(v)
	if err != nil {
		logger.Fatal(err)
	}
	if fs.Lookup("verbose").Value.String() == "true" {
		logger.Print(spew.Sdump(s))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if fs.Lookup("pulse").Value.String() == "true" {
		err = printTicks(os.Stdout, s.Pulse)
	} else {
		err = run(ctx, s, logger)
	}
	if err != nil {
		logger.Printf("wavegen: %s", err)
		stop()
		os.Exit(1)
	}
}

func printTicks(w io.Writer, p counter.PulseTrain) error {
	ticks, err := p.Ticks(counter.DefaultTimebase)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "pulse train %g Hz, duty %g, delay %g s, trigger %s\n",
		p.Frequency, p.DutyCycle, p.InitialDelay, p.Trigger)
	fmt.Fprintf(w, "ticks at %g Hz: delay %d, high %d, low %d (%.6g Hz)\n",
		counter.DefaultTimebase, ticks.Delay, ticks.High, ticks.Low,
		ticks.ActualFrequency(counter.DefaultTimebase))
	return nil
}

// run generates the buffer, writes the requested exports and streams it.
func run(ctx context.Context, s settings, logger *log.Logger) error {
	buf, err := waveform.Generate(s.Spec)
	if err != nil {
		return err
	}
	logger.Printf("Generated %d %s samples of %s at %g S/s (%s)",
		buf.Len(), buf.Target, s.Spec.Kind, buf.Rate, buf.Duration())
	if s.Npy != "" {
		if err := writeNpy(s.Npy, buf); err != nil {
			return err
		}
		logger.Printf("Wrote %s", s.Npy)
	}
	if s.Wav != "" {
		if err := writeWav(s.Wav, buf); err != nil {
			return err
		}
		logger.Printf("Wrote %s", s.Wav)
	}
	return stream(ctx, s, logger)
}

func writeNpy(filename string, buf *waveform.Buffer) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	var val interface{} = buf.Analog
	if buf.Target == waveform.Digital {
		val = buf.Digital
	}
	if err := npyio.Write(f, val); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %s", filename, err)
	}
	return f.Close()
}

func writeWav(filename string, buf *waveform.Buffer) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := preview.WriteWAV(f, buf); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %s", filename, err)
	}
	return f.Close()
}

type waiter interface {
	Wait(ctx context.Context) error
}

// stream plays the waveform on the configured device until a finite run
// completes, the duration elapses or ctx is cancelled.
func stream(ctx context.Context, s settings, logger *log.Logger) error {
	var (
		driver task.Driver
		name   string
	)
	switch s.Device {
	case "", "none":
		return nil
	case "sim":
		driver = task.NewSimulator()
		name = "sim/" + s.Spec.Target.String()
	case "usb20x":
		usb, err := usb20x.Init()
		if err != nil {
			return fmt.Errorf("error initializing libusb: %s", err)
		}
		defer usb.Close()
		var daq *usb20x.USB20X
		if s.Serial != "" {
			daq, err = usb20x.NewViaSN(usb, s.Serial)
		} else {
			daq, err = usb20x.GetFirstDevice(usb)
		}
		if err != nil {
			return err
		}
		defer daq.Close()
		if sn, err := daq.SerialNumber(); err == nil {
			logger.Printf("Opened %s S/N %s", daq.Product, sn)
		}
		driver, name, err = usb20xOutput(daq, s)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown device %q", s.Device)
	}

	tk := task.New(name, s.Spec.Target, driver)
	tk.Mode = s.Mode
	tk.Trigger = s.Trigger
	tk.Logger = logger
	if err := tk.Configure(s.Spec); err != nil {
		tk.Close()
		return err
	}
	if err := tk.Start(ctx); err != nil {
		tk.Close()
		return err
	}
	if w, ok := driver.(waiter); ok && s.Mode == task.Finite {
		if err := w.Wait(ctx); err != nil {
			tk.Close()
			return err
		}
		return tk.Close()
	}
	if s.Mode == task.Continuous {
		var timeout <-chan time.Time
		if s.Duration > 0 {
			timeout = time.After(s.Duration)
		}
		select {
		case <-ctx.Done():
			logger.Printf("%s: interrupted", name)
		case <-timeout:
		}
	}
	return tk.Close()
}

func usb20xOutput(daq *usb20x.USB20X, s settings) (task.Driver, string, error) {
	if s.Spec.Target == waveform.Digital {
		do, err := usb20x.NewDigitalOutput(daq)
		return do, fmt.Sprintf("%s/port0", daq.Product), err
	}
	if !daq.Product.HasAnalogOutput() {
		return nil, "", fmt.Errorf("%s has no analog outputs", daq.Product)
	}
	ao, err := usb20x.NewAnalogOutput(daq, s.Channel)
	return ao, fmt.Sprintf("%s/ao%d", daq.Product, s.Channel), err
}
