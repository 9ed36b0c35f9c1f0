package stats

import (
	"testing"
	"time"
)

func TestMonthRangeFrom(t *testing.T) {
	ref := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		offset    int
		wantStart string
		wantEnd   string
	}{
		{"Current month", 0, "2024-03-01", "2024-04-01"},
		{"Last month", -1, "2024-02-01", "2024-03-01"},
		{"Across a year boundary", -3, "2023-12-01", "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := MonthRangeFrom(ref, tt.offset)
			if got := tr.Start.Format(DateLayout); got != tt.wantStart {
				t.Errorf("Start = %s, want %s", got, tt.wantStart)
			}
			if got := tr.End.Format(DateLayout); got != tt.wantEnd {
				t.Errorf("End = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestTimeRange_Contains(t *testing.T) {
	tr := YearRangeFrom(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), 0)

	tests := []struct {
		date string
		want bool
	}{
		{"2024-01-01", true},
		{"2024-12-31", true},
		{"2023-12-31", false},
		{"2025-01-01", false},
		{"not-a-date", false},
	}

	for _, tt := range tests {
		if got := tr.Contains(tt.date); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.date, got, tt.want)
		}
	}

	if !(TimeRange{}).Contains("not-a-date") {
		t.Error("unbounded range should contain everything")
	}
}

func TestLastDaysFrom(t *testing.T) {
	ref := time.Date(2024, time.March, 10, 18, 30, 0, 0, time.UTC)
	tr := LastDaysFrom(ref, 7)

	if !tr.Contains("2024-03-10") {
		t.Error("range should include the reference day")
	}
	if !tr.Contains("2024-03-04") {
		t.Error("range should include the 7th day back")
	}
	if tr.Contains("2024-03-03") {
		t.Error("range should not include the 8th day back")
	}
}

func TestParseRange(t *testing.T) {
	now := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input     string
		wantStart string
		wantErr   bool
	}{
		{"", "", false},
		{"all", "", false},
		{"month", "2024-05-01", false},
		{"last-month", "2024-04-01", false},
		{"year", "2024-01-01", false},
		{"last-year", "2023-01-01", false},
		{"30d", "2024-04-21", false},
		{"2022", "2022-01-01", false},
		{"0d", "", true},
		{"fortnight", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tr, err := ParseRange(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got := ""
			if !tr.Start.IsZero() {
				got = tr.Start.Format(DateLayout)
			}
			if got != tt.wantStart {
				t.Errorf("Start = %q, want %q", got, tt.wantStart)
			}
		})
	}
}

func TestTimeRange_FormatPeriod(t *testing.T) {
	if got := (TimeRange{}).FormatPeriod(); got != "All time" {
		t.Errorf("FormatPeriod() = %q", got)
	}
	tr := MonthRangeFrom(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), 0)
	if got := tr.FormatPeriod(); got != "2024-02-01 to 2024-02-29" {
		t.Errorf("FormatPeriod() = %q", got)
	}
}
