package queue

import (
	"github.com/maheshrc27/colorpress/internal/service"
)

type Queue struct {
	gs service.GenerationService
}

func NewQueue(gs service.GenerationService) *Queue {
	return &Queue{gs: gs}
}

const TaskTypeGenerateTheme = "generate:theme"

type GenerateThemePayload struct {
	ThemeID string   `json:"theme_id"`
	Ideas   []string `json:"ideas"`
}
