package reconcile

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/rewardscan/internal/domain/model"
)

const presenceSuffix = "presence"

// Amount reads field from e as a non-negative reward. A missing field, null
// or empty string is zero. Anything else that is not a finite, non-negative
// number fails with ErrDataFormat.
func Amount(e model.Entry, field string) (float64, error) {
	v, ok := e[field]
	if !ok || v == nil {
		return 0, nil
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		x, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q is not a number", ErrDataFormat, field, t.String())
		}
		f = x
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, nil
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q is not a number", ErrDataFormat, field, t)
		}
		f = x
	default:
		return 0, fmt.Errorf("%w: %s has unsupported type %T", ErrDataFormat, field, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s is not finite", ErrDataFormat, field)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: %s is negative (%v)", ErrDataFormat, field, f)
	}
	return f, nil
}

// Flag converts a presence value to a boolean. ok is false when the value
// is null, which leaves the flag unset.
func Flag(v any) (present bool, ok bool, err error) {
	switch t := v.(type) {
	case nil:
		return false, false, nil
	case bool:
		return t, true, nil
	case int64:
		return t != 0, true, nil
	case int:
		return t != 0, true, nil
	case float64:
		return t != 0, true, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return false, false, fmt.Errorf("%w: presence %q", ErrDataFormat, t.String())
		}
		return f != 0, true, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, false, fmt.Errorf("%w: presence %q", ErrDataFormat, t)
		}
		return b, true, nil
	default:
		return false, false, fmt.Errorf("%w: presence has unsupported type %T", ErrDataFormat, v)
	}
}

// PresenceMonth returns the month key for a field such as "janPresence".
func PresenceMonth(field string) (string, bool) {
	lower := strings.ToLower(field)
	if len(lower) <= len(presenceSuffix) || !strings.HasSuffix(lower, presenceSuffix) {
		return "", false
	}
	return model.MonthKey(lower[:len(lower)-len(presenceSuffix)]), true
}

// criteria reads a disqualification reason. Absent or empty values mean
// the peer is not disqualified.
func criteria(e model.Entry, field string) string {
	switch t := e[field].(type) {
	case nil:
		return model.NotDisqualified
	case string:
		if strings.TrimSpace(t) == "" {
			return model.NotDisqualified
		}
		return t
	default:
		return fmt.Sprint(t)
	}
}
