package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// GenerateOTP creates a numeric OTP of specified length
func GenerateOTP(length int) string {
	if length <= 0 {
		length = 6
	}

	return randomDigits(length)
}

// GenerateBookingRef creates a human readable reference for emails and receipts.
// Format: FIX-YYYYMMDD-RANDOM
func GenerateBookingRef(now time.Time) string {
	return fmt.Sprintf("FIX-%s-%s", now.Format("20060102"), randomDigits(4))
}

func randomDigits(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			sb.WriteByte('0')
			continue
		}
		sb.WriteString(d.String())
	}
	return sb.String()
}

// ParseDay reads a calendar date from "2006-01-02" or an RFC 3339 timestamp
// and returns it as midnight UTC. Any time of day is dropped.
func ParseDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return DayOf(t, t.Location()), nil
}

// DayOf returns the calendar day of t in loc as midnight UTC.
func DayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
