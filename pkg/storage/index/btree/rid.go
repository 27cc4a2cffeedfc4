package btree

import "storemy/pkg/buffer"

// RID is an opaque row identifier: a heap page id plus a slot within it
// (glossary: "RID"). The tree never interprets it beyond storing and
// returning it.
type RID struct {
	PageID buffer.PageID
	Slot   uint32
}
