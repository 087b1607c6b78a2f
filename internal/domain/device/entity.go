package device

import (
	"strings"
	"time"
)

// Record is a read-only snapshot of one tenant-managed endpoint, fetched
// once per run and never mutated.
type Record struct {
	ID              string
	DeviceName      string
	SerialNumber    string
	Model           *string
	Manufacturer    *string
	OperatingSystem *string
	OSVersion       *string
	ComplianceState ComplianceState
	OwnerType       OwnerType
	Category        *string
	EnrollmentType  string
	PrimaryUser     *string
	LastSyncAt      *time.Time
	EnrolledAt      *time.Time
}

// ComplianceState represents a device's reported adherence to policy.
type ComplianceState string

const (
	StateCompliant    ComplianceState = "compliant"
	StateNoncompliant ComplianceState = "noncompliant"
	StateUnknown      ComplianceState = "unknown"
)

// ParseComplianceState folds every state outside compliant/noncompliant
// (inGracePeriod, conflict, error, ...) into StateUnknown.
func ParseComplianceState(s string) ComplianceState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compliant":
		return StateCompliant
	case "noncompliant":
		return StateNoncompliant
	default:
		return StateUnknown
	}
}

// OwnerType represents who owns the hardware.
type OwnerType string

const (
	OwnerCorporate OwnerType = "corporate"
	OwnerPersonal  OwnerType = "personal"
	OwnerUnknown   OwnerType = "unknown"
)

func ParseOwnerType(s string) OwnerType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "company", "corporate":
		return OwnerCorporate
	case "personal":
		return OwnerPersonal
	default:
		return OwnerUnknown
	}
}

// Sentinel labels substituted for blank or missing fields when grouping.
const (
	SentinelModel        = "Unknown Model"
	SentinelManufacturer = "Unknown Manufacturer"
	SentinelOS           = "Unknown OS"
	SentinelCategory     = "Uncategorized"
	SentinelOwner        = "Unknown"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// ModelKey and the other *Key accessors are the grouping key functions fed
// to the aggregator; they return the raw field with blanks left blank so
// sentinel substitution stays in one place.
func (r Record) ModelKey() string        { return deref(r.Model) }
func (r Record) ManufacturerKey() string { return deref(r.Manufacturer) }
func (r Record) OSKey() string           { return deref(r.OperatingSystem) }
func (r Record) CategoryKey() string     { return deref(r.Category) }

func (r Record) OwnerKey() string {
	if r.OwnerType == OwnerUnknown {
		return ""
	}
	return string(r.OwnerType)
}

// IsOS reports whether the record's operating system matches name,
// case-insensitively.
func (r Record) IsOS(name string) bool {
	return strings.EqualFold(deref(r.OperatingSystem), name)
}

// DeletedRecord is one entry from the deletion audit trail; the history
// report lists these on their own sheet.
type DeletedRecord struct {
	DeviceName string
	DeletedAt  time.Time
	Actor      string
}
