package content

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Format returns the textual form of a resolved value as it is substituted
// into rendered output. Mappings and nil render as empty text.
func Format(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case time.Time:
		return formatTime(v)
	case []byte:
		return string(v)
	}
	if seq, ok := Sequence(value); ok {
		parts := make([]string, len(seq))
		for i, el := range seq {
			parts[i] = Format(el)
		}
		return strings.Join(parts, ",")
	}
	return ""
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatTime(t time.Time) string {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// Truthy applies the "empty means false" rule: sequences are truthy iff
// non-empty; nil, "", zero numbers, false, NaN and empty mappings are falsy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case time.Time:
		return !v.IsZero()
	}
	if seq, ok := Sequence(value); ok {
		return len(seq) > 0
	}
	if m, ok := Mapping(value); ok {
		return len(m) > 0
	}
	return true
}
