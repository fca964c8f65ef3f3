package models

import "time"

// Default calendar parameters applied when no config row exists.
const (
	DefaultWorkingDays    = 5
	DefaultPeriodsPerDay  = 6
	DefaultLabBlockLength = 2
)

// CalendarConfig holds institution-wide scheduling parameters. The latest
// row wins; absence of any row falls back to the defaults above.
type CalendarConfig struct {
	ID             string    `db:"id" json:"id"`
	WorkingDays    int       `db:"working_days" json:"working_days"`
	PeriodsPerDay  int       `db:"periods_per_day" json:"periods_per_day"`
	LabBlockLength int       `db:"lab_block_length" json:"lab_block_length"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultCalendarConfig returns the fallback configuration.
func DefaultCalendarConfig() CalendarConfig {
	return CalendarConfig{
		WorkingDays:    DefaultWorkingDays,
		PeriodsPerDay:  DefaultPeriodsPerDay,
		LabBlockLength: DefaultLabBlockLength,
	}
}
