package common

import (
	"testing"
	"time"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		page      int
		pageSize  int
		wantPages int
		wantSize  int
	}{
		{name: "exact", total: 40, page: 1, pageSize: 20, wantPages: 2, wantSize: 20},
		{name: "remainder", total: 41, page: 3, pageSize: 20, wantPages: 3, wantSize: 20},
		{name: "empty", total: 0, page: 1, pageSize: 10, wantPages: 0, wantSize: 10},
		{name: "default size", total: 5, page: 0, pageSize: 0, wantPages: 1, wantSize: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.total, tt.page, tt.pageSize)
			if p.TotalPages != tt.wantPages {
				t.Errorf("expected %d pages, got %d", tt.wantPages, p.TotalPages)
			}
			if p.PageSize != tt.wantSize {
				t.Errorf("expected page size %d, got %d", tt.wantSize, p.PageSize)
			}
			if p.CurrentPage < 1 {
				t.Errorf("expected current page >= 1, got %d", p.CurrentPage)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	loc := time.UTC

	got, err := ParseDate("2024-06-10", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected date %s", got)
	}

	got, err = ParseDate("  ", loc)
	if err != nil || !got.IsZero() {
		t.Fatalf("expected zero time for blank input, got %s (%v)", got, err)
	}

	if _, err := ParseDate("10/06/2024", loc); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

func TestDayBoundaries(t *testing.T) {
	ts := time.Date(2024, 6, 10, 15, 4, 5, 0, time.UTC)
	if got := StartOfDay(ts); !got.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start of day %s", got)
	}
	end := EndOfDay(ts)
	if end.Day() != 10 || end.Hour() != 23 || end.Minute() != 59 {
		t.Fatalf("unexpected end of day %s", end)
	}
}
