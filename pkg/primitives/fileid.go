package primitives

import "fmt"

// TableID identifies a table's heap file. It shares FileID's underlying
// value space (same hash, same uint64) but is its own type so a TableID
// can't be passed where an IndexID is expected, or vice versa.
type TableID uint64

// IndexID identifies an index file, on the same footing as TableID.
type IndexID uint64

// FileID Methods
// =============================================================================

// IsValid checks if the FileID is a valid non-zero identifier.
// A FileID of 0 is typically considered invalid or uninitialized.
func (f FileID) IsValid() bool {
	return f != 0
}

// AsUint64 returns the FileID as a uint64 for serialization or storage.
func (f FileID) AsUint64() uint64 {
	return uint64(f)
}

// String returns a string representation of the FileID.
func (f FileID) String() string {
	return fmt.Sprintf("FileID(%d)", f)
}

// NewFileIDFromUint64 constructs a FileID from a raw hash value.
func NewFileIDFromUint64(v uint64) FileID {
	return FileID(v)
}

// TableID Methods
// =============================================================================

// ToFileID converts a TableID back to the underlying FileID.
func (t TableID) ToFileID() FileID {
	return FileID(t)
}

// IsValid checks if the TableID is a valid non-zero identifier.
func (t TableID) IsValid() bool {
	return t != 0
}

// AsUint64 returns the TableID as a uint64 for serialization or storage.
func (t TableID) AsUint64() uint64 {
	return uint64(t)
}

// String returns a string representation of the TableID.
func (t TableID) String() string {
	return fmt.Sprintf("TableID(%d)", t)
}

// AsIndexID reinterprets this TableID's value as an IndexID.
func (t TableID) AsIndexID() IndexID {
	return IndexID(t)
}

// NewTableIDFromUint64 constructs a TableID from a raw hash value.
func NewTableIDFromUint64(v uint64) TableID {
	return TableID(v)
}

// NewTableIDFromFileID converts a FileID into a TableID.
func NewTableIDFromFileID(f FileID) TableID {
	return TableID(f)
}

// IndexID Methods
// =============================================================================

// ToFileID converts an IndexID back to the underlying FileID.
func (i IndexID) ToFileID() FileID {
	return FileID(i)
}

// IsValid checks if the IndexID is a valid non-zero identifier.
func (i IndexID) IsValid() bool {
	return i != 0
}

// AsUint64 returns the IndexID as a uint64 for serialization or storage.
func (i IndexID) AsUint64() uint64 {
	return uint64(i)
}

// String returns a string representation of the IndexID.
func (i IndexID) String() string {
	return fmt.Sprintf("IndexID(%d)", i)
}

// AsTableID reinterprets this IndexID's value as a TableID.
func (i IndexID) AsTableID() TableID {
	return TableID(i)
}

// NewIndexIDFromUint64 constructs an IndexID from a raw hash value.
func NewIndexIDFromUint64(v uint64) IndexID {
	return IndexID(v)
}

// NewIndexIDFromFileID converts a FileID into an IndexID.
func NewIndexIDFromFileID(f FileID) IndexID {
	return IndexID(f)
}
