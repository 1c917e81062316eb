// Package timeparse converts the duration and time-of-day formats found in
// maintenance logs into canonical minutes.
package timeparse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Convention selects how a two-part colon string like "1:30" is read.
// Maintenance logs are inconsistent about this, so callers must say which
// they mean instead of the parser guessing per file.
type Convention int

const (
	// HoursMinutes reads "1:30" as 1h30m (90 minutes). Default for
	// duration fields.
	HoursMinutes Convention = iota
	// MinutesSeconds reads "1:30" as 1m30s (1.5 minutes). Only for fields
	// known to carry sub-minute precision.
	MinutesSeconds
)

// NumericUnit selects how a bare numeric value is read.
type NumericUnit int

const (
	// DayFraction treats numerics as spreadsheet time cells, 1.0 = 24h.
	DayFraction NumericUnit = iota
	// Minutes treats numerics as a decimal number of minutes, the form
	// the store itself writes.
	Minutes
)

// Warning reports a value that could not be parsed and was defaulted to
// zero. It is carried as a value so callers can distinguish "zero duration"
// from "unparseable" without a side channel.
type Warning struct {
	Raw    string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %q", w.Reason, w.Raw)
}

// Parser holds the interpretation choices for ambiguous duration formats.
type Parser struct {
	TwoPart Convention
	Numeric NumericUnit
}

// Duration converts raw into minutes. Accepted forms: empty (0, no
// warning), bare numerics (per p.Numeric), "HH:MM:SS", and two-part colon
// strings (per p.TwoPart). Anything else yields 0 and a non-nil Warning;
// it never fails in a way that would abort the rest of a batch.
func (p Parser) Duration(raw string) (float64, *Warning) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, nil
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		// ParseFloat also accepts "inf" and "nan" spellings.
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, &Warning{Raw: raw, Reason: "non-finite duration"}
		}
		if v < 0 {
			return 0, &Warning{Raw: raw, Reason: "negative duration"}
		}
		if p.Numeric == DayFraction {
			return v * 24 * 60, nil
		}
		return v, nil
	}

	if strings.Contains(s, ":") {
		return p.colonDuration(raw, s)
	}

	return 0, &Warning{Raw: raw, Reason: "unrecognized duration format"}
}

func (p Parser) colonDuration(raw, s string) (float64, *Warning) {
	parts := strings.Split(s, ":")
	nums := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v < 0 {
			return 0, &Warning{Raw: raw, Reason: "malformed time component"}
		}
		nums[i] = v
	}

	switch len(nums) {
	case 3:
		return nums[0]*60 + nums[1] + nums[2]/60, nil
	case 2:
		if p.TwoPart == MinutesSeconds {
			return nums[0] + nums[1]/60, nil
		}
		return nums[0]*60 + nums[1], nil
	default:
		return 0, &Warning{Raw: raw, Reason: "expected 2 or 3 colon-separated components"}
	}
}

// Clock is a time of day with second precision.
type Clock struct {
	Hour, Minute, Second int
}

// ParseClock reads "HH:MM" or "HH:MM:SS". The boolean is false for
// anything else, including out-of-range components.
func ParseClock(raw string) (Clock, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Clock{}, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Clock{}, false
	}

	var c Clock
	fields := []*int{&c.Hour, &c.Minute, &c.Second}
	limits := []int{23, 59, 59}
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 || v > limits[i] {
			return Clock{}, false
		}
		*fields[i] = v
	}
	return c, true
}

// Minutes returns the clock position as minutes past midnight.
func (c Clock) Minutes() float64 {
	return float64(c.Hour)*60 + float64(c.Minute) + float64(c.Second)/60
}

// String renders HH:MM, or HH:MM:SS when seconds are present.
func (c Clock) String() string {
	if c.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
	}
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// IsZero reports whether the clock is exactly midnight with no seconds,
// which the record model uses as "not set".
func (c Clock) IsZero() bool {
	return c.Hour == 0 && c.Minute == 0 && c.Second == 0
}

// DurationBetween returns end - start in minutes within one calendar day.
// A negative span is taken to cross midnight and gets 24h added; it is
// never clamped to zero.
func DurationBetween(start, end Clock) float64 {
	d := end.Minutes() - start.Minutes()
	if d < 0 {
		d += 24 * 60
	}
	return d
}

// FormatMinutes renders a minute count as HH:MM:SS for display and export.
func FormatMinutes(min float64) string {
	total := int(min*60 + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
