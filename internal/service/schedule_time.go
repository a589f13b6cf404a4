package service

import (
	"time"

	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	// Placeholder rendered for absent or invalid instants instead of failing.
	timePlaceholder = "--"
)

// CombineDateTime merges the separate date and time form inputs into a
// single UTC instant, the shape the backend stores.
func CombineDateTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date or time")
	}
	return t, nil
}

// SplitDateTime decomposes a stored instant back into the date and time
// fields the edit form shows. Absent instants yield placeholders.
func SplitDateTime(instant *time.Time) (date, clock string) {
	if instant == nil || instant.IsZero() {
		return timePlaceholder, timePlaceholder
	}
	utc := instant.UTC()
	return utc.Format(dateLayout), utc.Format(timeLayout)
}
