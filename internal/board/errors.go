package board

import "errors"

var (
	ErrNotFound             = errors.New("board: not found")
	ErrAlreadyExists        = errors.New("board: already exists")
	ErrInvalidInput         = errors.New("board: invalid input")
	ErrDuplicateApplication = errors.New("board: already applied to this job")
	ErrInvalidTransition    = errors.New("board: status transition not allowed")
	ErrUpdateInFlight       = errors.New("board: status update already in flight")
)
