package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-05-17", true},
		{" 2024-05-17 ", true},
		{"2024-5-17", false},
		{"17/05/2024", false},
		{"", false},
	}
	for i, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if tc.ok && d.String() != "2024-05-17" {
			t.Fatalf("case %d round-trip mismatch: %q", i, d.String())
		}
	}
}

func TestDateMonthKey(t *testing.T) {
	if got := NewDate(2024, 5, 17).MonthKey(); got != "2024-05" {
		t.Fatalf("expected 2024-05, got %q", got)
	}
	// Zero dates degrade to the current month instead of failing.
	if got := (Date{}).MonthKey(); got != time.Now().UTC().Format("2006-01") {
		t.Fatalf("zero date should map to current month, got %q", got)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 5, 17))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-05-17"` {
		t.Fatalf("unexpected marshal output %s", b)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2024-05-17"`), &d); err != nil {
		t.Fatal(err)
	}
	if d.String() != "2024-05-17" {
		t.Fatalf("unexpected unmarshal result %q", d.String())
	}

	// Empty string means "no date supplied" and stays zero.
	if err := json.Unmarshal([]byte(`""`), &d); err != nil {
		t.Fatal(err)
	}
	if !d.IsZero() {
		t.Fatal("empty date string should produce zero date")
	}

	if err := json.Unmarshal([]byte(`"not-a-date"`), &d); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestValidMonth(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-05", true},
		{"2024-13", false},
		{"2024-5", false},
		{"202405", false},
		{"", false},
	}
	for i, tc := range cases {
		if got := ValidMonth(tc.in); got != tc.ok {
			t.Fatalf("case %d (%q): expected %v", i, tc.in, tc.ok)
		}
	}
}
