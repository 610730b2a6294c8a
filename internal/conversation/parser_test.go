package conversation

import (
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
)

func staticNames(names ...string) NameSource {
	return NameSourceFunc(func() []string { return names })
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestParseAlarmCommandTimes(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewParser(staticNames(), log)
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input      string
		wantHour   int
		wantMinute int
	}{
		// Separator variants.
		{"đặt báo thức lúc 9 giờ 30 sáng", 9, 30},
		{"đặt báo thức lúc 7 giờ 30 sáng", 7, 30},
		{"báo thức 7h30", 7, 30},
		{"báo thức lúc 6:45", 6, 45},
		{"đặt báo thức 7 giờ", 7, 0},

		// 12-hour qualifiers.
		{"9 giờ tối", 21, 0},
		{"7 giờ chiều", 19, 0},
		{"12 giờ sáng", 0, 0},
		{"8 giờ sáng", 8, 0},

		// Unaccented qualifiers, including at the end of the utterance.
		{"12 gio sang", 0, 0},
		{"bao thuc 8 gio sang", 8, 0},

		// Already 24-hour.
		{"đặt báo thức lúc 21 giờ 15", 21, 15},
		{"báo thức 0:05", 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req, err := parser.ParseAlarmCommand(tt.input, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Hour != tt.wantHour || req.Minute != tt.wantMinute {
				t.Errorf("got %02d:%02d, want %02d:%02d", req.Hour, req.Minute, tt.wantHour, tt.wantMinute)
			}
		})
	}
}

func TestParseAlarmCommandDates(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewParser(staticNames(), log)
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		wantDate *time.Time
	}{
		{"7 giờ sáng", nil}, // daily, no date
		{"7 giờ sáng hôm nay", datePtr(2026, 3, 9)},
		{"7 giờ sáng ngày mai", datePtr(2026, 3, 10)},
		{"set alarm 7:00 tomorrow", datePtr(2026, 3, 10)},
		{"7 giờ ngày 15", datePtr(2026, 3, 15)},
		{"7 giờ ngày 15 tháng 2", datePtr(2026, 2, 15)},
		{"7 giờ ngày 15 tháng 2 năm 2027", datePtr(2027, 2, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req, err := parser.ParseAlarmCommand(tt.input, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tt.wantDate == nil && req.Date != nil:
				t.Errorf("expected no date, got %v", req.Date)
			case tt.wantDate != nil && req.Date == nil:
				t.Errorf("expected %v, got none", tt.wantDate)
			case tt.wantDate != nil && !req.Date.Equal(*tt.wantDate):
				t.Errorf("expected %v, got %v", tt.wantDate, req.Date)
			}
		})
	}
}

func TestParseAlarmCommandErrors(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewParser(staticNames(), log)
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input   string
		wantErr error
	}{
		{"đặt báo thức giúp tôi", domain.ErrTimeNotRecognized},
		{"", domain.ErrTimeNotRecognized},
		{"báo thức lúc 25 giờ", domain.ErrTimeNotRecognized},
		{"báo thức lúc 7 giờ 75", domain.ErrTimeNotRecognized},
		{"7 giờ ngày 31 tháng 2", domain.ErrInvalidDate},
		{"7 giờ ngày 31 tháng 13 năm 2026", domain.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parser.ParseAlarmCommand(tt.input, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNextAlarmName(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)

	tests := []struct {
		existing []string
		want     string
	}{
		{nil, "Alarm 1"},
		{[]string{"Alarm 1"}, "Alarm 2"},
		{[]string{"Alarm 1", "Alarm 2", "Alarm 3"}, "Alarm 4"},
		{[]string{"Alarm 1", "Alarm 3"}, "Alarm 2"}, // first free slot
		{[]string{"Work", "Gym"}, "Alarm 1"},        // custom names don't count
		{[]string{"Alarm 2 (snoozed)"}, "Alarm 1"},  // suffixed clones don't count
	}

	for _, tt := range tests {
		parser := NewParser(staticNames(tt.existing...), log)
		if got := parser.NextAlarmName(); got != tt.want {
			t.Errorf("existing=%v: got %q, want %q", tt.existing, got, tt.want)
		}
	}
}
