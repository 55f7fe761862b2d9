// Package dateexpr parses date expressions for stamped footers: explicit
// dates, "today", or "next occurrence of a weekday" with a week offset.
package dateexpr

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseError reports an expression that matched no supported form.
type ParseError struct {
	Expr   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date expression %q: %s", e.Expr, e.Reason)
}

type kind int

const (
	kindNone kind = iota
	kindToday
	kindExplicit
	kindWeekday
)

// Expr is a parsed date expression. The zero value is the empty
// expression, which resolves to no date.
type Expr struct {
	kind   kind
	date   time.Time
	day    time.Weekday
	offset int
}

// Parse accepts:
//
//	""            no date
//	"today"       today's date (case-insensitive)
//	"2024-11-20"  explicit, ISO
//	"11/20/2024"  explicit, US
//	"Tuesday"     next Tuesday, today included when today is one
//	"Tuesday+3"   three weeks past the next Tuesday
func Parse(expr string) (Expr, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return Expr{}, nil
	}
	if strings.EqualFold(trimmed, "today") {
		return Expr{kind: kindToday}, nil
	}
	if d, err := time.Parse("2006-01-02", trimmed); err == nil {
		return Expr{kind: kindExplicit, date: d}, nil
	}
	if d, err := time.Parse("1/2/2006", trimmed); err == nil {
		return Expr{kind: kindExplicit, date: d}, nil
	}
	if dayStr, offStr, found := strings.Cut(trimmed, "+"); found {
		day, ok := parseWeekday(strings.TrimSpace(dayStr))
		if !ok {
			return Expr{}, &ParseError{Expr: expr, Reason: "unknown weekday " + strings.TrimSpace(dayStr)}
		}
		offset, err := strconv.Atoi(strings.TrimSpace(offStr))
		if err != nil || offset < 0 {
			return Expr{}, &ParseError{Expr: expr, Reason: "invalid offset " + strings.TrimSpace(offStr)}
		}
		return Expr{kind: kindWeekday, day: day, offset: offset}, nil
	}
	if day, ok := parseWeekday(trimmed); ok {
		return Expr{kind: kindWeekday, day: day}, nil
	}
	return Expr{}, &ParseError{Expr: expr, Reason: "unrecognized format"}
}

func parseWeekday(s string) (time.Weekday, bool) {
	switch strings.ToLower(s) {
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	case "sunday", "sun":
		return time.Sunday, true
	default:
		return 0, false
	}
}

// IsNone reports the empty expression.
func (e Expr) IsNone() bool { return e.kind == kindNone }

// Resolve materializes the expression against now. The second return is
// false for the empty expression.
func (e Expr) Resolve(now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch e.kind {
	case kindNone:
		return time.Time{}, false
	case kindToday:
		return today, true
	case kindExplicit:
		return e.date, true
	case kindWeekday:
		days := (int(e.day) - int(today.Weekday()) + 7) % 7
		return today.AddDate(0, 0, days+e.offset*7), true
	}
	return time.Time{}, false
}

// Format renders a date the way stamped footers expect it.
func Format(t time.Time) string {
	return t.Format("January 2, 2006")
}

// ResolveString parses and resolves in one step, returning the formatted
// date or "" for the empty expression.
func ResolveString(expr string, now time.Time) (string, error) {
	e, err := Parse(expr)
	if err != nil {
		return "", err
	}
	d, ok := e.Resolve(now)
	if !ok {
		return "", nil
	}
	return Format(d), nil
}
