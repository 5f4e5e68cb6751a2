package domain

import "errors"

// ErrEngineGone is returned when the engine context terminated while a script
// was waiting for a response. It is fatal and must never be retried.
var ErrEngineGone = errors.New("graphics engine no longer exists")

// ErrInvalidSteps is returned for a Circle request with fewer than one step.
var ErrInvalidSteps = errors.New("circle needs at least one step")

// ErrUnknownTurtle is returned when a request names a turtle the engine does not own.
var ErrUnknownTurtle = errors.New("unknown turtle")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrScreenForbidden is returned when a turtle sharing its window with other
// sessions tries a window-level operation (clear, background, title, bye).
var ErrScreenForbidden = errors.New("window operations are not allowed on a shared canvas")
