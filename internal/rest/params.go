package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/klokku/studyplan/pkg/calendar_date"
)

// DateParam reads a query parameter as a calendar date. Both "2024-03-04" and
// RFC3339 values are accepted; the time of day is dropped.
func DateParam(r *http.Request, name string) (calendar_date.CalendarDate, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return calendar_date.CalendarDate{}, fmt.Errorf("query parameter %q is required", name)
	}
	date, err := calendar_date.Parse(calendar_date.StringDate(value), time.Local)
	if err != nil {
		return calendar_date.CalendarDate{}, fmt.Errorf("query parameter %q: %w", name, err)
	}
	return date, nil
}
