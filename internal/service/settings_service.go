package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/maheshrc27/colorpress/internal/models"
	"github.com/maheshrc27/colorpress/internal/repository"
	"github.com/maheshrc27/colorpress/internal/transfer"
)

// Rescheduler moves the daily publish trigger to new settings.
type Rescheduler interface {
	Reconfigure(settings *models.SchedulerSettings) error
}

type SettingsService interface {
	Get(ctx context.Context) (*models.SchedulerSettings, error)
	Update(ctx context.Context, req *transfer.UpdateSettingsRequest) (*models.SchedulerSettings, error)
}

type settingsService struct {
	// mu serializes Update so the stored row and the live trigger change together.
	mu          sync.Mutex
	sr          repository.SettingsRepository
	rescheduler Rescheduler
	defaultHour int
}

func NewSettingsService(sr repository.SettingsRepository, rescheduler Rescheduler, defaultHour int) SettingsService {
	return &settingsService{
		sr:          sr,
		rescheduler: rescheduler,
		defaultHour: defaultHour,
	}
}

// Get returns the stored settings, creating the defaults on first access.
func (s *settingsService) Get(ctx context.Context) (*models.SchedulerSettings, error) {
	settings, err := s.sr.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	if err := s.sr.Create(ctx, models.DefaultSchedulerSettings(s.defaultHour)); err != nil {
		return nil, fmt.Errorf("creating default settings: %w", err)
	}
	slog.Info("created default scheduler settings", "publish_hour", s.defaultHour)

	settings, err = s.sr.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, fmt.Errorf("scheduler settings missing after create")
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, req *transfer.UpdateSettingsRequest) (*models.SchedulerSettings, error) {
	if req.DailyLimit == nil || req.PublishHour == nil {
		return nil, fmt.Errorf("%w: dailyLimit and publishHour are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	updated := *settings
	updated.DailyLimit = *req.DailyLimit
	updated.PublishHour = *req.PublishHour
	updated.PublishMinute = 0
	if req.PublishMinute != nil {
		updated.PublishMinute = *req.PublishMinute
	}
	if req.Enabled != nil {
		updated.Enabled = *req.Enabled
	}
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	if err := s.sr.Update(ctx, &updated); err != nil {
		return nil, err
	}

	if s.rescheduler != nil {
		if err := s.rescheduler.Reconfigure(&updated); err != nil {
			return nil, fmt.Errorf("rescheduling publish trigger: %w", err)
		}
	}
	return &updated, nil
}
