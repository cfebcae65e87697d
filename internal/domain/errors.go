package domain

import "github.com/cockroachdb/errors"

var (
	ErrNetwork             = errors.New("network error")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrTableNotFound       = errors.New("ranking table not found")
	ErrParameterExtraction = errors.New("parameter extraction failed")
	ErrEmptyResult         = errors.New("no ranking records collected")
	ErrMissingColumn       = errors.New("record columns do not match header")
	ErrContextKeyNotFound  = errors.New("callback context key not found")
)
