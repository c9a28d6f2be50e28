package activities

import (
	"context"
	"fmt"
	"time"
)

// loadDateLayout renders dates as ddMMyyyy, the format the load_date column
// uses.
const loadDateLayout = "02012006"

// LoadDateStamper produces the load date string for a run, evaluated in a
// fixed timezone so runs started near midnight UTC land on the right day.
type LoadDateStamper struct {
	loc *time.Location
	now func() time.Time
}

// NewLoadDateStamper creates a stamper for the given IANA timezone.
func NewLoadDateStamper(timezone string) (*LoadDateStamper, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid load date timezone %q: %w", timezone, err)
	}
	return &LoadDateStamper{loc: loc, now: time.Now}, nil
}

// LoadDate returns today's date in the configured timezone as ddMMyyyy.
func (s *LoadDateStamper) LoadDate(context.Context) (string, error) {
	return s.now().In(s.loc).Format(loadDateLayout), nil
}
