// Package normalize provides pure conversions from raw cell values to
// canonical typed values: exact decimal amounts and calendar dates.
//
// All locale assumptions (recognized currency symbols, thousands separator,
// month/day precedence) are carried explicitly in a Policy rather than being
// hard-coded, because bank exports are not self-describing.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateOrder fixes how ambiguous slash/dash dates are read. Bank exports use a
// consistent order per institution; it is configured, never auto-detected.
type DateOrder string

const (
	// MonthDay reads "03/04/2024" as March 4th (the documented default).
	MonthDay DateOrder = "mdy"
	// DayMonth reads "03/04/2024" as April 3rd.
	DayMonth DateOrder = "dmy"
)

// Policy holds the locale assumptions applied while cleansing raw values.
type Policy struct {
	// CurrencySymbols are stripped from amount strings before parsing.
	CurrencySymbols []string
	// ThousandsSep is removed from amount strings before parsing.
	ThousandsSep string
	// DateOrder resolves ambiguous numeric dates.
	DateOrder DateOrder
}

// DefaultPolicy returns the documented defaults: pound/euro/dollar symbols,
// comma thousands separator, month-before-day dates.
func DefaultPolicy() Policy {
	return Policy{
		CurrencySymbols: []string{"£", "€", "$"},
		ThousandsSep:    ",",
		DateOrder:       MonthDay,
	}
}

// AmountError reports a raw value that failed to parse as a decimal amount
// after cleansing. It carries the original value for diagnostics.
type AmountError struct {
	Raw string
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("invalid amount %q", e.Raw)
}

// DateError reports a raw value that failed to parse as a calendar date.
type DateError struct {
	Raw string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid date %q", e.Raw)
}

// CleanAmount converts a raw amount cell to an exact decimal with two
// fractional digits. The cleansing steps, in order:
//
//  1. trim surrounding whitespace; an empty value is "absent" (ok == false)
//  2. strip the policy's currency symbols and thousands separators
//  3. drop a leading "+"
//  4. rewrite accounting notation "(X)" as "-X"
//  5. parse base-10 and round to cents (half away from zero)
//
// Anything that still fails to parse returns an *AmountError carrying the
// original raw value. Arithmetic is fixed-point throughout; no float64.
func CleanAmount(raw string, p Policy) (amount decimal.Decimal, ok bool, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, false, nil
	}

	for _, sym := range p.CurrencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	if p.ThousandsSep != "" {
		s = strings.ReplaceAll(s, p.ThousandsSep, "")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) > 2 {
		s = "-" + s[1:len(s)-1]
	}

	d, perr := decimal.NewFromString(s)
	if perr != nil {
		return decimal.Decimal{}, false, &AmountError{Raw: raw}
	}
	return d.Round(2), true, nil
}

// mdyLayouts and dmyLayouts are tried in order after the unambiguous ISO
// layouts. Go layout quirk: "1/2/2006" also accepts zero-padded components,
// but the padded variants are listed first for clarity.
var (
	isoLayouts = []string{"2006-01-02", "2006/01/02"}
	mdyLayouts = []string{"01/02/2006", "1/2/2006", "01-02-2006", "1-2-2006", "01/02/06"}
	dmyLayouts = []string{"02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006", "02/01/06"}
)

// CleanDate parses a raw date cell under the policy's fixed ordering.
// ISO dates (YYYY-MM-DD, YYYY/MM/DD) are accepted regardless of policy since
// they are unambiguous. Returns a *DateError carrying the raw value when no
// layout matches.
func CleanDate(raw string, p Policy) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &DateError{Raw: raw}
	}

	layouts := isoLayouts
	switch p.DateOrder {
	case DayMonth:
		layouts = append(layouts, dmyLayouts...)
	default:
		layouts = append(layouts, mdyLayouts...)
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DateError{Raw: raw}
}
