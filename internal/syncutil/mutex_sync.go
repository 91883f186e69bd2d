//go:build !deadlock

// Package syncutil holds the mutex used around shared device handles.
// Build with -tags=deadlock to swap in github.com/sasha-s/go-deadlock.
package syncutil

import "sync"

// Mutex is a sync.Mutex unless built with the deadlock tag.
type Mutex struct {
	sync.Mutex
}
