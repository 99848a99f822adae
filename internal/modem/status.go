package modem

import (
	"fmt"
	"strings"

	"github.com/soracom/connectivity-benchmark/internal/at"
)

// RegistrationStatus is the <stat> field of +CREG.
type RegistrationStatus int

const (
	NotRegisteredNotSearching RegistrationStatus = iota
	RegisteredHome
	NotRegisteredSearching
	RegistrationDenied
	RegistrationUnknown
	RegisteredRoaming
)

func (s RegistrationStatus) String() string {
	switch s {
	case NotRegisteredNotSearching:
		return "Not Registered"
	case RegisteredHome:
		return "Home Network"
	case NotRegisteredSearching:
		return "Searching..."
	case RegistrationDenied:
		return "Denied"
	case RegistrationUnknown:
		return "Unknown"
	case RegisteredRoaming:
		return "Roaming"
	default:
		return fmt.Sprintf("RegistrationStatus(%d)", int(s))
	}
}

// Registered reports whether s is a terminal (attached) state.
func (s RegistrationStatus) Registered() bool {
	return s == RegisteredHome || s == RegisteredRoaming
}

// ParseRegistrationStatus decodes a "+CREG: <n>,<stat>[,...]" payload.
// Values outside 0..5 are reported as not decodable.
func ParseRegistrationStatus(payload string) (RegistrationStatus, bool) {
	v, ok := at.StatField(payload, at.PrefixCREG)
	if !ok || v < int(NotRegisteredNotSearching) || v > int(RegisteredRoaming) {
		return RegistrationUnknown, false
	}
	return RegistrationStatus(v), true
}

// ParseContextStatus decodes the <state> of a "+CGACT: <cid>,<state>" line.
func ParseContextStatus(payload string) (active bool, ok bool) {
	v, ok := at.StatField(payload, at.PrefixCGACT)
	if !ok {
		return false, false
	}
	return v == 1, true
}

// AccessTechnology is the 27.007 <AcT> preferred for automatic selection.
type AccessTechnology int

const (
	GSM    AccessTechnology = 0
	UMTS   AccessTechnology = 2
	EUTRAN AccessTechnology = 7
)

func (a AccessTechnology) String() string {
	switch a {
	case GSM:
		return "GSM"
	case UMTS:
		return "UMTS"
	case EUTRAN:
		return "EUTRAN"
	default:
		return fmt.Sprintf("AccessTechnology(%d)", int(a))
	}
}

// ParseAccessTechnology accepts the names used in configuration.
// An empty string selects EUTRAN.
func ParseAccessTechnology(s string) (AccessTechnology, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "EUTRAN", "LTE", "4G":
		return EUTRAN, nil
	case "UMTS", "3G":
		return UMTS, nil
	case "GSM", "2G":
		return GSM, nil
	default:
		return 0, fmt.Errorf("unknown access technology %q", s)
	}
}
