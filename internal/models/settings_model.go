package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const (
	SchedulerSettingsID = 1

	DefaultDailyLimit    = 50
	MaxDailyLimit        = 50
	DefaultPublishHour   = 8
	DefaultPublishMinute = 0
)

// PublishMinutes are the minute offsets the trigger may fire at.
var PublishMinutes = []int{0, 15, 30, 45}

// SchedulerSettings is the singleton policy row of the daily publish trigger.
type SchedulerSettings struct {
	ID            int64        `db:"id" json:"id"`
	DailyLimit    int          `db:"daily_limit" json:"daily_limit"`
	PublishHour   int          `db:"publish_hour" json:"publish_hour"`
	PublishMinute int          `db:"publish_minute" json:"publish_minute"`
	Enabled       bool         `db:"enabled" json:"enabled"`
	LastRun       sql.NullTime `db:"last_run" json:"-"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

func DefaultSchedulerSettings(publishHour int) *SchedulerSettings {
	if publishHour < 0 || publishHour > 23 {
		publishHour = DefaultPublishHour
	}
	return &SchedulerSettings{
		ID:            SchedulerSettingsID,
		DailyLimit:    DefaultDailyLimit,
		PublishHour:   publishHour,
		PublishMinute: DefaultPublishMinute,
		Enabled:       true,
	}
}

func (s *SchedulerSettings) Validate() error {
	if s.DailyLimit < 1 || s.DailyLimit > MaxDailyLimit {
		return fmt.Errorf("daily limit must be between 1 and %d", MaxDailyLimit)
	}
	if s.PublishHour < 0 || s.PublishHour > 23 {
		return fmt.Errorf("publish hour must be between 0 and 23")
	}
	for _, m := range PublishMinutes {
		if s.PublishMinute == m {
			return nil
		}
	}
	return fmt.Errorf("publish minute must be one of %v", PublishMinutes)
}

// CronSpec renders the daily schedule in robfig/cron's six-field format.
func (s *SchedulerSettings) CronSpec() string {
	return fmt.Sprintf("0 %d %d * * *", s.PublishMinute, s.PublishHour)
}

func (s SchedulerSettings) MarshalJSON() ([]byte, error) {
	type alias SchedulerSettings
	var lastRun *time.Time
	if s.LastRun.Valid {
		t := s.LastRun.Time
		lastRun = &t
	}
	return json.Marshal(struct {
		alias
		LastRun *time.Time `json:"last_run"`
	}{alias: alias(s), LastRun: lastRun})
}
