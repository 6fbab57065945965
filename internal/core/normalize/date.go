package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// plausible Excel serial range for portfolio dates (≈1950 to ≈2119)
const (
	minDateSerial = 18264
	maxDateSerial = 80000
)

// Slash dates are always read day first: the core system exports Mexican
// dd/mm/yyyy and never month-first.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"02-01-2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// ExcelSerialToDate converts a 1900-system serial to a UTC time.
func ExcelSerialToDate(serial float64) time.Time {
	// base Excel serial -> 1899-12-30
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	days := math.Floor(serial)
	frac := serial - days
	t := base.AddDate(0, 0, int(days))
	return t.Add(time.Duration(math.Round(frac*86400)) * time.Second)
}

// Date parses a date cell, day first. A cell that is not blank but cannot be
// parsed keeps its text in Date.Text and is not Valid.
func Date(raw string) domain.Date {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Date{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f >= minDateSerial && f < maxDateSerial {
			return domain.Date{Time: ExcelSerialToDate(f), Valid: true}
		}
		return domain.Date{Text: s}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Date{Time: t, Valid: true}
		}
	}
	return domain.Date{Text: s}
}

// MeetingTime renders a meeting-hour cell. Excel stores times as a fraction of
// a day; those become "HH:MM". Any other text is kept as is.
func MeetingTime(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Text(s)
	}
	if f < 0 || (f >= 1 && f == math.Floor(f)) {
		return s
	}
	// date-time serial: keep the time part
	f -= math.Floor(f)
	minutes := int(math.Round(f * 24 * 60))
	if minutes >= 24*60 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
