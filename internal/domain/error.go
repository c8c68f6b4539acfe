package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrSlugImmutable      = errors.New("slug cannot change after publication")
	ErrJobTerminal        = errors.New("job is already in a terminal state")
	ErrUnknownJobKind     = errors.New("unknown job kind")
	ErrUnknownSource      = errors.New("unknown paper source")
	ErrMalformedAIReply   = errors.New("malformed AI response")
	ErrPromptTooLarge     = errors.New("prompt exceeds token budget")
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")
)
