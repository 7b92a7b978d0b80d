package chunk

import "errors"

var (
	ErrTypeLength        = errors.New("chunk: type must be exactly 4 characters")
	ErrTypeNotASCII      = errors.New("chunk: type bytes are not ascii")
	ErrTypeNotAlphabetic = errors.New("chunk: type must be alphabetic")
	ErrReservedBit       = errors.New("chunk: type reserved bit not set")
	ErrTruncated         = errors.New("chunk: truncated data")
	ErrChecksumMismatch  = errors.New("chunk: checksum mismatch")
	ErrPayloadTooLarge   = errors.New("chunk: payload too large")
	ErrInvalidUTF8       = errors.New("chunk: payload is not valid utf-8")
)
