package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var reID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ID validates a simple resource identifier (product/store ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Limit parses a result limit, clamping to [1, max] and falling back to def
// on garbage input.
func Limit(s string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// PIN enforces a short numeric unlock code.
func PIN(s string) bool {
	if len(s) < 4 || len(s) > 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
