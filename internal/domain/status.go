package domain

// Status is the lifecycle state of a soft-deletable record.
// Records are never removed; StatusDeleted marks logical deletion.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// IsActive reports whether the record is visible to read paths
func (s Status) IsActive() bool {
	return s == StatusActive
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusDeleted:
		return true
	}
	return false
}
