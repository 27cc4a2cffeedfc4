package storage

import "errors"

var UnSupportedPredicate = errors.New("unsupported predicate")

var TypeMismatch = errors.New("type mismatch")
