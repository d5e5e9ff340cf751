// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package usb20x

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gotmc/daqwave/task"
)

// MaxPacedRate is the fastest sample clock, in S/s, the software pacer
// accepts. The USB-20X outputs have no hardware pacer, so each sample is a
// separate control transfer.
const MaxPacedRate = 1000

var errRunning = errors.New("output is running")

// pacer replays a number of samples at a fixed rate on its own goroutine.
type pacer struct {
	mu     sync.Mutex
	rate   float64
	mode   task.SampleMode
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func (p *pacer) configure(rate float64, mode task.SampleMode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		return errRunning
	}
	if !(rate > 0) || rate > MaxPacedRate {
		return fmt.Errorf("sample rate %g S/s outside (0, %d] S/s", rate, MaxPacedRate)
	}
	switch mode {
	case task.Continuous, task.Finite:
	default:
		return fmt.Errorf("sample mode %s not supported by a software-paced output", mode)
	}
	p.rate = rate
	p.mode = mode
	return nil
}

func (p *pacer) running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}

// start emits samples 0..n-1 through emit, once for a finite run or until
// stopped for a continuous one.
func (p *pacer) start(ctx context.Context, n int, emit func(i int) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		return errRunning
	}
	if n == 0 {
		return errors.New("no samples written")
	}
	if p.rate == 0 {
		return errors.New("sample clock not configured")
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.err = nil
	go p.run(ctx, n, emit, p.done)
	return nil
}

func (p *pacer) run(ctx context.Context, n int, emit func(i int) error, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(time.Duration(float64(time.Second) / p.rate))
	defer ticker.Stop()
	for {
		for i := 0; i < n; i++ {
			if err := emit(i); err != nil {
				p.mu.Lock()
				p.err = fmt.Errorf("sample %d: %w", i, err)
				p.mu.Unlock()
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
		if p.mode == task.Finite {
			return
		}
	}
}

// wait blocks until the current run ends and returns its error.
func (p *pacer) wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.finish(done)
}

// stop cancels the current run and waits for its goroutine to exit.
func (p *pacer) stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	cancel()
	<-done
	return p.finish(done)
}

func (p *pacer) finish(done chan struct{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != done {
		return nil
	}
	err := p.err
	p.cancel()
	p.cancel, p.done, p.err = nil, nil, nil
	return err
}
