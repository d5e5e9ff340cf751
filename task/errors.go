// Copyright (c) 2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package task

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by any operation on a closed task.
var ErrClosed = errors.New("task closed")

// NotConfiguredError is returned when an operation needs a generated buffer
// but the task has none.
type NotConfiguredError struct {
	Task string
	Op   string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("task %s: unable to %s, waveform not configured", e.Task, e.Op)
}
