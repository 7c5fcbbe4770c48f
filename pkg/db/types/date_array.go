package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateArray maps a Postgres date[] column onto a slice of calendar dates.
// Times are normalized to midnight UTC.
type DateArray []time.Time

func (a *DateArray) Scan(src any) error {
	if src == nil {
		*a = DateArray{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return a.parseFromString(v)
	case []byte:
		return a.parseFromString(string(v))
	default:
		return fmt.Errorf("DateArray: unsupported Scan type %T", src)
	}
}

func (a DateArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	parts := make([]string, 0, len(a))
	for _, d := range a {
		parts = append(parts, d.UTC().Format(DateLayout))
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Contains reports whether the array holds the same calendar date as day.
func (a DateArray) Contains(day time.Time) bool {
	y, m, d := day.UTC().Date()
	for _, existing := range a {
		ey, em, ed := existing.UTC().Date()
		if ey == y && em == m && ed == d {
			return true
		}
	}
	return false
}

func (a *DateArray) parseFromString(s string) error {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if strings.TrimSpace(s) == "" {
		*a = DateArray{}
		return nil
	}

	raw := strings.Split(s, ",")
	out := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(strings.Trim(r, `"`))
		// Postgres may render dates with a time component.
		if len(r) > len(DateLayout) {
			r = r[:len(DateLayout)]
		}
		d, err := time.ParseInLocation(DateLayout, r, time.UTC)
		if err != nil {
			return fmt.Errorf("DateArray: parse %q: %w", r, err)
		}
		out = append(out, d)
	}
	*a = DateArray(out)
	return nil
}
