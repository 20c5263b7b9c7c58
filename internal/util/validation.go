package util

import (
	"regexp"
)

var (
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	codeRegex = regexp.MustCompile(`^[1-9][0-9]{3}$`)
)

func IsValidUUID(s string) bool {
	if s == "" {
		return false
	}
	return uuidRegex.MatchString(s)
}

// IsValidPairingCode reports whether s looks like an issued code:
// four decimal digits in 1000–9999.
func IsValidPairingCode(s string) bool {
	return codeRegex.MatchString(s)
}

// IsValidDeviceID accepts any non-empty identifier up to a sane bound;
// the device id is an opaque string generated client-side.
func IsValidDeviceID(s string) bool {
	return s != "" && len(s) <= 128
}
