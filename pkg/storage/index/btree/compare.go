package btree

import "storemy/pkg/types"

// compareKeys returns -1, 0, 1 for a<b, a==b, a>b respectively, preserving
// the strict weak ordering §9's Design Notes requires of the comparator.
func compareKeys(a, b types.Field) (int, error) {
	eq, err := a.Compare(types.Equals, b)
	if err != nil {
		return 0, err
	}
	if eq {
		return 0, nil
	}
	lt, err := a.Compare(types.LessThan, b)
	if err != nil {
		return 0, err
	}
	if lt {
		return -1, nil
	}
	return 1, nil
}
