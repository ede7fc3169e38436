package models

import (
	"fmt"
	"time"
)

// Shift is a named recurring time window. End may be earlier than Start, in
// which case the window wraps past midnight.
type Shift struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:32;not null;uniqueIndex"`
	Start string `json:"start" gorm:"size:5;not null"` // HH:MM
	End   string `json:"end" gorm:"size:5;not null"`   // HH:MM
}

// Window returns the start and end of the shift as minutes after midnight.
func (s Shift) Window() (start, end int, err error) {
	if start, err = ClockMinutes(s.Start); err != nil {
		return 0, 0, fmt.Errorf("shift %s start: %w", s.Name, err)
	}
	if end, err = ClockMinutes(s.End); err != nil {
		return 0, 0, fmt.Errorf("shift %s end: %w", s.Name, err)
	}
	return start, end, nil
}

// Contains reports whether minute-of-day now falls inside [start, end).
func (s Shift) Contains(now int) (bool, error) {
	start, end, err := s.Window()
	if err != nil {
		return false, err
	}
	if start <= end {
		return now >= start && now < end, nil
	}
	return now >= start || now < end, nil
}

// ClockMinutes parses an HH:MM time of day.
func ClockMinutes(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
