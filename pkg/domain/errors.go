package domain

import "errors"

// ErrNotFound is returned by blob stores when a key does not exist.
var ErrNotFound = errors.New("blob not found")

// ErrSessionNotFound is returned when a session ID cannot be found.
var ErrSessionNotFound = errors.New("session not found")

// ErrStepNotFound is returned when navigation reaches an undeclared step.
var ErrStepNotFound = errors.New("step not found")

// ErrNavigationCycle is returned when a skip chain exceeds the iteration ceiling.
var ErrNavigationCycle = errors.New("navigation cycle")

// ErrSubmissionInProgress is returned when a quote submission is already in flight for the session.
var ErrSubmissionInProgress = errors.New("submission already in progress")

// ErrUpstream marks a failure to reach or understand a collaborator service.
var ErrUpstream = errors.New("upstream service unavailable")
