package domain

import "errors"

var (
	ErrLogNotFound       = errors.New("injected-memory log not found")
	ErrInvalidTranscript = errors.New("transcript is missing or unreadable")
)
