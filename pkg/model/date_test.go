package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	day := func(d int) Date {
		return NewDate(2026, time.September, d)
	}

	tests := []struct {
		name     string
		start1   Date
		end1     Date
		start2   Date
		end2     Date
		expected bool
	}{
		{
			name:   "identical ranges",
			start1: day(10), end1: day(15),
			start2: day(10), end2: day(15),
			expected: true,
		},
		{
			name:   "partial overlap at the end",
			start1: day(10), end1: day(15),
			start2: day(14), end2: day(20),
			expected: true,
		},
		{
			name:   "one fully contains the other",
			start1: day(10), end1: day(20),
			start2: day(12), end2: day(14),
			expected: true,
		},
		{
			name:   "single shared day",
			start1: day(10), end1: day(15),
			start2: day(14), end2: day(15),
			expected: true,
		},
		{
			name:   "back to back stays do not overlap",
			start1: day(10), end1: day(15),
			start2: day(15), end2: day(20),
			expected: false,
		},
		{
			name:   "back to back stays in reverse order",
			start1: day(15), end1: day(20),
			start2: day(10), end2: day(15),
			expected: false,
		},
		{
			name:   "fully disjoint",
			start1: day(1), end1: day(5),
			start2: day(20), end2: day(25),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.start1, tt.end1, tt.start2, tt.end2)
			if got != tt.expected {
				t.Errorf("Overlaps(%s, %s, %s, %s) = %v, want %v",
					tt.start1, tt.end1, tt.start2, tt.end2, got, tt.expected)
			}
		})
	}
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Day Date `json:"day"`
	}

	in := payload{Day: NewDate(2026, time.September, 5)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	expected := `{"day":"2026-09-05"}`
	if string(data) != expected {
		t.Errorf("marshalled %s, want %s", data, expected)
	}

	var out payload
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !out.Day.Equal(in.Day) {
		t.Errorf("round trip produced %s, want %s", out.Day, in.Day)
	}
}

func TestDate_UnmarshalJSON_RejectsTimestamps(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2026-09-05T10:00:00Z"`), &d); err == nil {
		t.Error("expected error for timestamp input, got nil")
	}
}

func TestDate_AddDays(t *testing.T) {
	d := NewDate(2026, time.September, 1)

	if got := d.AddDays(-1); got.String() != "2026-08-31" {
		t.Errorf("AddDays(-1) = %s, want 2026-08-31", got)
	}
	if got := d.AddDays(30); got.String() != "2026-10-01" {
		t.Errorf("AddDays(30) = %s, want 2026-10-01", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-09-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2026-09-05" {
		t.Errorf("parsed %s, want 2026-09-05", d)
	}

	if _, err := ParseDate("05/09/2026"); err == nil {
		t.Error("expected error for malformed date, got nil")
	}
}

func TestReservation_OverlapsRange(t *testing.T) {
	r := &Reservation{
		StartDate: NewDate(2026, time.September, 10),
		EndDate:   NewDate(2026, time.September, 15),
	}

	if !r.OverlapsRange(NewDate(2026, time.September, 14), NewDate(2026, time.September, 20)) {
		t.Error("expected overlap with partially covering range")
	}
	if r.OverlapsRange(NewDate(2026, time.September, 15), NewDate(2026, time.September, 20)) {
		t.Error("checkout day must be free for the next stay")
	}
}
