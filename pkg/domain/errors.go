package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParameters is returned when a run is started with unusable parameters.
// No work is attempted.
var ErrInvalidParameters = errors.New("invalid cascade parameters")

// ErrDataSource is returned when the reaction data source fails mid-run.
var ErrDataSource = errors.New("reaction data source error")

// ErrRunActive is returned when a run is started on an engine that already has one in flight.
var ErrRunActive = errors.New("a cascade run is already active")

// ErrRunNotFound is returned when a run ID cannot be found in the manager or the result store.
var ErrRunNotFound = errors.New("cascade run not found")

// ParameterError lists every validation problem found in a Parameters value.
type ParameterError struct {
	Problems []string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidParameters, strings.Join(e.Problems, "; "))
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameters
}

// DataSourceError wraps a failure of the reaction data source with the loop and
// operation during which it occurred.
type DataSourceError struct {
	Loop int
	Op   string
	Err  error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("%s: loop %d: %s: %v", ErrDataSource, e.Loop, e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *DataSourceError) Unwrap() []error {
	return []error{ErrDataSource, e.Err}
}
