// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package progression

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the kind of completion a user reported.
type Category string

const (
	CategoryAction      Category = "action"
	CategoryAffirmation Category = "affirmation"
	CategoryHabit       Category = "habit"
	CategoryCheckin     Category = "checkin"
	CategoryScan        Category = "scan"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryAction,
	CategoryAffirmation,
	CategoryHabit,
	CategoryCheckin,
	CategoryScan,
}

// ErrUnknownCategory is returned when a category name is not recognised.
var ErrUnknownCategory = errors.New("unknown category")

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CountsTowardCombo reports whether c is one of the three combo categories.
func (c Category) CountsTowardCombo() bool {
	return c == CategoryAction || c == CategoryAffirmation || c == CategoryHabit
}

// ParseCategory normalises and validates a category name.
// "task" is accepted as an alias of "action".
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "task" {
		name = string(CategoryAction)
	}
	c := Category(name)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
