package domain

import "errors"

var (
	// ErrValidation is returned when submitted setup data fails a rule.
	ErrValidation = errors.New("invalid quiz setup")
	// ErrNetwork is returned when the completion call fails or its response
	// lacks the expected content field.
	ErrNetwork = errors.New("completion request failed")
	// ErrParse is returned when the completion output contains no JSON object.
	ErrParse = errors.New("no quiz JSON in completion output")
	// ErrShape is returned when the extracted JSON is not a valid question set.
	ErrShape = errors.New("quiz JSON has unexpected shape")
	// ErrGeneration aggregates generation-path failures when the mock
	// fallback is disabled; it is the only generation error a student sees.
	ErrGeneration = errors.New("quiz generation failed")
	// ErrRunBusy is returned when setup is submitted while a generation call
	// for the same run is still in flight.
	ErrRunBusy = errors.New("quiz generation already in progress")
	// ErrRunClosed is returned on operations against a torn-down run.
	ErrRunClosed = errors.New("quiz run closed")
)
