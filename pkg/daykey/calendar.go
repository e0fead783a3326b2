// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package daykey derives calendar day keys from instants in a single fixed
// reporting timezone. Every "today", "yesterday" and "next midnight" in the
// engine goes through a Calendar so results are reproducible from raw
// timestamps regardless of where the caller's device is.
package daykey

import (
	"fmt"
	"time"
)

const (
	// Layout is the format of a day key (YYYY-MM-DD).
	Layout = "2006-01-02"

	// DefaultOffsetHours is the product reporting timezone (Asia/Ho_Chi_Minh, UTC+7).
	DefaultOffsetHours = 7
)

// Clock returns the current instant.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Calendar maps instants to day keys using a fixed UTC offset.
type Calendar struct {
	loc         *time.Location
	offsetHours int
}

// NewCalendar creates a calendar for a fixed offset in whole hours east of UTC.
func NewCalendar(offsetHours int) *Calendar {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return &Calendar{
		loc:         time.FixedZone(name, offsetHours*60*60),
		offsetHours: offsetHours,
	}
}

// Default returns the calendar for the product reporting timezone.
func Default() *Calendar {
	return NewCalendar(DefaultOffsetHours)
}

// Location returns the fixed zone used by the calendar.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// OffsetHours returns the configured offset.
func (c *Calendar) OffsetHours() int {
	return c.offsetHours
}

// Key returns the day key that contains t.
func (c *Calendar) Key(t time.Time) string {
	return t.In(c.loc).Format(Layout)
}

// Parse returns the instant of midnight that starts the given day.
func (c *Calendar) Parse(key string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, key, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t, nil
}

// NextMidnight returns the first instant of the day after the one containing t.
func (c *Calendar) NextMidnight(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, c.loc).UTC()
}

// AddDays shifts a day key by n calendar days.
func (c *Calendar) AddDays(key string, n int) (string, error) {
	t, err := c.Parse(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

// Yesterday returns the day key before key.
func (c *Calendar) Yesterday(key string) (string, error) {
	return c.AddDays(key, -1)
}
