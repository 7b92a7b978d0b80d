package png

import "errors"

var (
	ErrSignature     = errors.New("png: invalid signature")
	ErrChunkNotFound = errors.New("png: chunk not found")
	ErrInputTooLarge = errors.New("png: input too large")
)
