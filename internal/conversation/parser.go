// Package conversation turns alarm-setting utterances into structured
// requests and delivers ring notifications to the host UI.
package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
)

// AlarmRequest is the structured result of parsing an utterance.
type AlarmRequest struct {
	Hour   int
	Minute int
	Date   *time.Time // nil for a daily alarm
	Name   string
}

// Parser extracts alarm parameters from free-form Vietnamese (and
// basic English) text. Best-effort: it recognizes the common phrasings
// and rejects the rest with a clear error.
type Parser struct {
	names NameSource
	log   *logger.Logger
}

// NameSource supplies the names of existing alarms so generated names
// don't collide. Satisfied by storage.AlarmStore through a small
// adapter in the cmd layer, or directly in tests.
type NameSource interface {
	Names() []string
}

// NameSourceFunc adapts a function to NameSource.
type NameSourceFunc func() []string

// Names implements NameSource.
func (f NameSourceFunc) Names() []string { return f() }

// NewParser creates a parser over the given name source.
func NewParser(names NameSource, log *logger.Logger) *Parser {
	return &Parser{names: names, log: log}
}

// Accepted time separators: "7 giờ 30", "7h30", "7:30", bare "7 giờ".
var timePattern = regexp.MustCompile(`(\d{1,2})\s*(?:giờ|gio|h|:)\s*(\d{1,2})?`)

// Explicit date: "ngày 15", "ngày 15 tháng 2", "ngày 15 tháng 2 năm 2027".
var datePattern = regexp.MustCompile(`ngày\s+(\d{1,2})(?:\s+tháng\s+(\d{1,2}))?(?:\s+năm\s+(\d{4}))?`)

// Bare "mai" ("tomorrow") as its own word.
var maiPattern = regexp.MustCompile(`\bmai\b`)

// Unaccented "sang" ("morning") as its own word, so typed input
// without diacritics still converts.
var sangPattern = regexp.MustCompile(`\bsang\b`)

// ParseAlarmCommand extracts hour, minute, and an optional date from an
// utterance like "đặt báo thức lúc 7 giờ 30 sáng ngày mai". The
// reference time anchors relative words and default month/year.
func (p *Parser) ParseAlarmCommand(utterance string, now time.Time) (*AlarmRequest, error) {
	text := strings.ToLower(strings.TrimSpace(utterance))
	p.log.Debug("parsing alarm command: %q", text)

	m := timePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, domain.ErrTimeNotRecognized
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	// 12-hour qualifiers with standard conversion.
	switch {
	case strings.Contains(text, "sáng") || sangPattern.MatchString(text):
		if hour == 12 {
			hour = 0
		}
	case strings.Contains(text, "chiều") || strings.Contains(text, "tối"):
		if hour < 12 {
			hour += 12
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, domain.ErrTimeNotRecognized
	}

	date, err := p.parseDate(text, now)
	if err != nil {
		return nil, err
	}

	req := &AlarmRequest{
		Hour:   hour,
		Minute: minute,
		Date:   date,
		Name:   p.NextAlarmName(),
	}
	p.log.Debug("parsed alarm: %02d:%02d date=%v name=%q", hour, minute, date, req.Name)
	return req, nil
}

// parseDate resolves relative date words or an explicit day/month/year
// pattern. Returns nil when the utterance names no date (daily alarm).
func (p *Parser) parseDate(text string, now time.Time) (*time.Time, error) {
	day := func(t time.Time) *time.Time {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return &d
	}

	if strings.Contains(text, "hôm nay") || strings.Contains(text, "today") {
		return day(now), nil
	}
	if strings.Contains(text, "ngày mai") || strings.Contains(text, "tomorrow") ||
		maiPattern.MatchString(text) {
		return day(now.AddDate(0, 0, 1)), nil
	}

	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}

	d, _ := strconv.Atoi(m[1])
	month := int(now.Month())
	if m[2] != "" {
		month, _ = strconv.Atoi(m[2])
	}
	year := now.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
	}

	if month < 1 || month > 12 || d < 1 || d > 31 {
		return nil, domain.ErrInvalidDate
	}
	// time.Date normalizes overflow (Feb 31 -> Mar 3); reject that.
	t := time.Date(year, time.Month(month), d, 0, 0, 0, 0, now.Location())
	if t.Day() != d || t.Month() != time.Month(month) {
		return nil, domain.ErrInvalidDate
	}
	return &t, nil
}

// alarmNamePattern matches auto-generated names like "Alarm 3".
var alarmNamePattern = regexp.MustCompile(`^Alarm (\d+)$`)

// NextAlarmName returns the first free "Alarm N" name.
func (p *Parser) NextAlarmName() string {
	taken := make(map[int]bool)
	for _, name := range p.names.Names() {
		if m := alarmNamePattern.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				taken[n] = true
			}
		}
	}
	n := 1
	for taken[n] {
		n++
	}
	return fmt.Sprintf("Alarm %d", n)
}
