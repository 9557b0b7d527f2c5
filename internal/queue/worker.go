package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandleGenerateThemeTask(ctx context.Context, task *asynq.Task) error {
	var payload GenerateThemePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decoding payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Generating theme %s (%d ideas supplied)", payload.ThemeID, len(payload.Ideas))
	if err := j.gs.Generate(ctx, payload.ThemeID, payload.Ideas); err != nil {
		return fmt.Errorf("generating theme %s: %v: %w", payload.ThemeID, err, asynq.SkipRetry)
	}
	return nil
}
