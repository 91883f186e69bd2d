//go:build deadlock

// Package syncutil holds the mutex used around shared device handles.
// This file is compiled with -tags=deadlock and reports lock-order problems and long waits.
package syncutil

import deadlock "github.com/sasha-s/go-deadlock"

// Mutex is a deadlock.Mutex under the deadlock tag.
type Mutex struct {
	deadlock.Mutex
}
