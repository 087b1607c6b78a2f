package license

import "errors"

var (
	ErrNoLicensedUsers = errors.New("no licensed users returned")
	ErrUnknownGroup    = errors.New("rule refers to an unknown SKU group")
)
