package types

import "storemy/pkg/primitives"

// Predicate is the comparison operator passed to Field.Compare. It is an
// alias of primitives.Predicate so callers throughout the tree (parser,
// planner, execution) and the Field implementations in this package share
// one enum instead of two incompatible ones.
type Predicate = primitives.Predicate

const (
	Equals             = primitives.Equals
	LessThan           = primitives.LessThan
	GreaterThan        = primitives.GreaterThan
	LessThanOrEqual    = primitives.LessThanOrEqual
	GreaterThanOrEqual = primitives.GreaterThanOrEqual
	NotEqual           = primitives.NotEqual
	Like               = primitives.Like
)
