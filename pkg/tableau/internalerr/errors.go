package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound       = errors.New("not found")
	ErrUndeclared     = errors.New("undeclared entity")
	ErrBadCardinality = errors.New("malformed cardinality")
	ErrChainPosition  = errors.New("property chain outside SubObjectPropertyOf")
	ErrInvalidConfig  = errors.New("invalid configuration")
)
