package queue

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/colorpress/internal/service"
)

// generationTimeout bounds one theme run; a hundred images at the default
// rate limit take well under an hour.
const generationTimeout = 3 * time.Hour

func NewGenerateThemeTask(payload GenerateThemePayload) (*asynq.Task, error) {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	// A replayed run would insert the pages a second time.
	return asynq.NewTask(TaskTypeGenerateTheme, taskPayload, asynq.MaxRetry(0), asynq.Timeout(generationTimeout)), nil
}

// AsynqDispatcher enqueues generation runs on Redis for the asynq server.
type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher(client *asynq.Client) *AsynqDispatcher {
	return &AsynqDispatcher{client: client}
}

func (d *AsynqDispatcher) Dispatch(ctx context.Context, themeID string, ideas []string) error {
	task, err := NewGenerateThemeTask(GenerateThemePayload{ThemeID: themeID, Ideas: ideas})
	if err != nil {
		return err
	}

	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}

	log.Printf("Task enqueued: theme=%s task=%s", themeID, info.ID)
	return nil
}

// InlineDispatcher runs generation in a goroutine of this process. It is used
// when no Redis is configured.
type InlineDispatcher struct {
	gs service.GenerationService
	wg sync.WaitGroup
}

func NewInlineDispatcher(gs service.GenerationService) *InlineDispatcher {
	return &InlineDispatcher{gs: gs}
}

func (d *InlineDispatcher) Dispatch(_ context.Context, themeID string, ideas []string) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
		defer cancel()
		if err := d.gs.Generate(ctx, themeID, ideas); err != nil {
			log.Printf("Generation of theme %s failed: %v", themeID, err)
		}
	}()
	return nil
}

// Wait blocks until every dispatched run has finished.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}
