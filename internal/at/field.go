package at

import (
	"strconv"
	"strings"
)

// StatField decodes the status value of a "<prefix><n>,<stat>[,...]" line:
// the token after the first comma, up to the next comma if any. It never
// panics; ok is false when the prefix or a usable integer is missing.
func StatField(payload, prefix string) (stat int, ok bool) {
	line := strings.TrimSpace(payload)
	if !strings.HasPrefix(line, prefix) {
		return 0, false
	}
	_, rest, found := strings.Cut(line, ",")
	if !found {
		return 0, false
	}
	field, _, _ := strings.Cut(rest, ",")
	v, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, false
	}
	return v, true
}
