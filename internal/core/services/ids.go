package services

import "github.com/google/uuid"

// ID prefixes.
const (
	notebookIDPrefix = "notebook"
	cellIDPrefix     = "cell"
)

// newID returns a prefixed, time-ordered unique identifier.
// Version 7 UUIDs sort by creation time, so ascending ID order is creation order.
func newID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "-" + id.String()
}

// NewNotebookID returns a fresh notebook identifier.
func NewNotebookID() string {
	return newID(notebookIDPrefix)
}

// NewCellID returns a fresh cell identifier.
func NewCellID() string {
	return newID(cellIDPrefix)
}
