package manifestfile

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var truthy = map[string]struct{}{
	"true": {},
	"y":    {},
	"yes":  {},
	"1":    {},
}

// ParseBoolean reports whether text is one of true/y/yes/1 (any case).
func ParseBoolean(text string) bool {
	_, ok := truthy[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// ParseFloatSafe never fails: anything that is not a number becomes 0.
func ParseFloatSafe(text string) float64 {
	v := strings.TrimSpace(text)
	if v == "" || v == "0" {
		return 0
	}
	prefix := numericPrefix(v)
	if prefix == "" {
		return 0
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// numericPrefix returns the longest leading run of s that reads as a decimal
// number (optional sign, digits, fraction, exponent).
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return s[:i]
}

// Layouts the desktop export has been seen to emit, en-US first.
var dateLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseFlexibleDate parses a locale formatted timestamp in loc and returns it
// in UTC. Empty or unparsable text yields nil.
func ParseFlexibleDate(text string, loc *time.Location) *time.Time {
	v := strings.Join(strings.Fields(text), " ")
	if v == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	upper := strings.ToUpper(v)
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, upper, loc)
		if err != nil {
			continue
		}
		u := t.UTC()
		return &u
	}
	return nil
}

// ParseDuration converts "D.HH:MM:SS", "HH:MM:SS" or "MM:SS" into
// milliseconds. Components that do not parse count as zero; this is
// tolerance for dirty exports, not validation. A total that does not fit in
// int64 milliseconds is unknown and yields nil.
func ParseDuration(text string) *int64 {
	v := strings.TrimSpace(text)
	if v == "" {
		return nil
	}

	var days int64
	clock := v
	dot := strings.IndexByte(v, '.')
	colon := strings.IndexByte(v, ':')
	if dot >= 0 && (colon < 0 || dot < colon) {
		days = leadingInt(v[:dot])
		clock = v[dot+1:]
	}

	var h, m, s int64
	parts := strings.Split(clock, ":")
	switch len(parts) {
	case 1:
		s = leadingInt(parts[0])
	case 2:
		m = leadingInt(parts[0])
		s = leadingInt(parts[1])
	default:
		h = leadingInt(parts[0])
		m = leadingInt(parts[1])
		s = leadingInt(parts[2])
	}

	ms, ok := int64(0), true
	for _, step := range [...]struct{ mul, add int64 }{
		{1, days}, {24, h}, {60, m}, {60, s}, {1000, 0},
	} {
		if ms, ok = mulAdd(ms, step.mul, step.add); !ok {
			return nil
		}
	}
	return &ms
}

// mulAdd returns a*mul + add for non-negative operands, false on overflow.
func mulAdd(a, mul, add int64) (int64, bool) {
	if a > 0 && a > (math.MaxInt64-add)/mul {
		return 0, false
	}
	return a*mul + add, true
}

// leadingInt reads the leading decimal digits of s, 0 when there are none.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// CleanString trims surrounding whitespace.
func CleanString(text string) string {
	return strings.TrimSpace(text)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
