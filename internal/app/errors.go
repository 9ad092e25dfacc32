package service

import "errors"

var (
	// ErrBackpressure is returned when the observation queue is full.
	ErrBackpressure = errors.New("observation queue is full")
	// ErrNotStarted is returned by asynchronous operations before Start.
	ErrNotStarted = errors.New("service not started")
)
