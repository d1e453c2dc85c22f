package domain

import "errors"

var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrFetchFailed      = errors.New("failed to fetch source image")
	ErrReadBodyFailed   = errors.New("failed to read source image body")
	ErrDecodeFailed     = errors.New("failed to decode source image")
	ErrEncodeFailed     = errors.New("failed to encode image")
)

type ErrorKind string

const (
	KindMissingParameter ErrorKind = "missing_parameter"
	KindFetchFailed      ErrorKind = "fetch_failed"
	KindReadBodyFailed   ErrorKind = "read_body_failed"
	KindDecodeFailed     ErrorKind = "decode_failed"
	KindEncodeFailed     ErrorKind = "encode_failed"
	KindInternal         ErrorKind = "internal"
)

// Kind maps an error returned by the conversion pipeline to its kind label.
func Kind(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrMissingParameter):
		return KindMissingParameter
	case errors.Is(err, ErrFetchFailed):
		return KindFetchFailed
	case errors.Is(err, ErrReadBodyFailed):
		return KindReadBodyFailed
	case errors.Is(err, ErrDecodeFailed):
		return KindDecodeFailed
	case errors.Is(err, ErrEncodeFailed):
		return KindEncodeFailed
	default:
		return KindInternal
	}
}
