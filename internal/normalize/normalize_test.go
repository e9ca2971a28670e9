package normalize

import (
	"errors"
	"testing"
	"time"
)

func TestCleanAmount(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"pound with thousands separator", "£1,234.56", "1234.56"},
		{"parenthesized negative", "(12.00)", "-12.00"},
		{"leading plus one decimal", "+5.5", "5.50"},
		{"plain integer", "42", "42.00"},
		{"euro symbol", "€99.99", "99.99"},
		{"dollar with plus", "+$10", "10.00"},
		{"negative sign", "-3.25", "-3.25"},
		{"symbol inside parens", "(£12.00)", "-12.00"},
		{"surrounding whitespace", "  7.10  ", "7.10"},
		{"three decimals round half up", "1.005", "1.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := CleanAmount(tt.raw, p)
			if err != nil {
				t.Fatalf("CleanAmount(%q) error = %v", tt.raw, err)
			}
			if !ok {
				t.Fatalf("CleanAmount(%q) ok = false, want true", tt.raw)
			}
			if got.StringFixed(2) != tt.want {
				t.Errorf("CleanAmount(%q) = %s, want %s", tt.raw, got.StringFixed(2), tt.want)
			}
		})
	}
}

func TestCleanAmount_Absent(t *testing.T) {
	for _, raw := range []string{"", "   "} {
		_, ok, err := CleanAmount(raw, DefaultPolicy())
		if err != nil {
			t.Errorf("CleanAmount(%q) error = %v, want nil", raw, err)
		}
		if ok {
			t.Errorf("CleanAmount(%q) ok = true, want false (absent)", raw)
		}
	}
}

func TestCleanAmount_Invalid(t *testing.T) {
	tests := []string{"abc", "12.34.56", "(abc)", "--5", "()"}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, _, err := CleanAmount(raw, DefaultPolicy())
			var amountErr *AmountError
			if !errors.As(err, &amountErr) {
				t.Fatalf("CleanAmount(%q) error = %v, want *AmountError", raw, err)
			}
			if amountErr.Raw != raw {
				t.Errorf("AmountError.Raw = %q, want %q", amountErr.Raw, raw)
			}
		})
	}
}

func TestCleanDate_MonthFirst(t *testing.T) {
	p := DefaultPolicy()

	got, err := CleanDate("03/04/2024", p)
	if err != nil {
		t.Fatalf("CleanDate() error = %v", err)
	}
	want := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CleanDate(03/04/2024) = %v, want %v (month first)", got, want)
	}
}

func TestCleanDate_DayFirst(t *testing.T) {
	p := DefaultPolicy()
	p.DateOrder = DayMonth

	got, err := CleanDate("03/04/2024", p)
	if err != nil {
		t.Fatalf("CleanDate() error = %v", err)
	}
	want := time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CleanDate(03/04/2024) = %v, want %v (day first)", got, want)
	}
}

func TestCleanDate_ISOAlwaysAccepted(t *testing.T) {
	for _, order := range []DateOrder{MonthDay, DayMonth} {
		p := Policy{DateOrder: order}
		got, err := CleanDate("2024-12-31", p)
		if err != nil {
			t.Fatalf("CleanDate(ISO) with order %s error = %v", order, err)
		}
		if got.Format("2006-01-02") != "2024-12-31" {
			t.Errorf("CleanDate(ISO) = %v", got)
		}
	}
}

func TestCleanDate_Invalid(t *testing.T) {
	tests := []string{"", "not a date", "13/32/2024", "2024-13-01"}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := CleanDate(raw, DefaultPolicy())
			var dateErr *DateError
			if !errors.As(err, &dateErr) {
				t.Fatalf("CleanDate(%q) error = %v, want *DateError", raw, err)
			}
		})
	}
}
