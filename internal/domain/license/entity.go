package license

// UserRecord is a read-only snapshot of one tenant identity holding at
// least one assigned license.
type UserRecord struct {
	ID            string
	DisplayName   string
	PrincipalName string
	Enabled       bool
	SKUIDs        []string
}

// Violation is the audit finding for one overprovisioned user. It exists
// only for users whose tracked licenses breach at least one rule.
type Violation struct {
	DisplayName     string
	PrincipalName   string
	Enabled         bool
	MatchedLicenses []string
	Rules           []string
}

// Count is the number of rules the user violated.
func (v Violation) Count() int {
	return len(v.Rules)
}
