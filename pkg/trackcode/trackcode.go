// Package trackcode generates the short public codes customers use to
// look up their orders without exposing database ids.
package trackcode

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

// Prefix tags every code with the business identifier.
const Prefix = "PH-"

const (
	stampLen   = 4
	randomLen  = 5
	base36     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// New returns a code like "PH-K3F29X7QA": a fixed prefix, the last four
// characters of the base36 millisecond timestamp and five random base36
// characters. Codes trend chronologically; the random suffix keeps two
// calls in the same millisecond distinct.
func New() string {
	stamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	if len(stamp) > stampLen {
		stamp = stamp[len(stamp)-stampLen:]
	}

	buf := make([]byte, randomLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand is documented to never fail on supported platforms;
		// fall back to a timestamp-only suffix rather than panic.
		return Prefix + stamp + strings.ToUpper(strconv.FormatInt(time.Now().UnixNano(), 36))[:randomLen]
	}
	for i, b := range buf {
		buf[i] = base36[int(b)%len(base36)]
	}

	return Prefix + stamp + string(buf)
}

// Normalize uppercases a user-supplied code for lookup. Codes are
// stored uppercase and compared case-insensitively.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
