package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	config "github.com/maheshrc27/colorpress/configs"
	"github.com/maheshrc27/colorpress/internal/transfer"
	"github.com/maheshrc27/colorpress/pkg/utils"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	maxSeoTitle       = 60
	maxSeoDescription = 160
	maxAltText        = 125
)

type IdeaGenerator interface {
	GenerateIdeas(ctx context.Context, quantity int, style string, existingIdeas []string) ([]string, error)
}

type SeoGenerator interface {
	GenerateSeo(ctx context.Context, title, idea string) (*transfer.SeoContent, error)
}

// OpenAIService produces page ideas and Dutch SEO copy with chat completions.
// In mock mode it answers from canned data and never calls the API.
type OpenAIService struct {
	client    openai.Client
	chatModel string
	mock      bool
}

func NewOpenAIService(cfg config.Config) *OpenAIService {
	return &OpenAIService{
		client:    openai.NewClient(openAIOptions(cfg.OpenAI)...),
		chatModel: cfg.OpenAI.ChatModel,
		mock:      cfg.UseMock(),
	}
}

func openAIOptions(cfg config.OpenAI) []option.RequestOption {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return opts
}

var mockIdeas = map[string][]string{
	"christmas": {
		"Santa Claus with reindeer flying over snowy houses",
		"Christmas tree decorated with ornaments and presents underneath",
		"Snowman with a carrot nose and coal eyes",
		"Christmas wreath with holly and red bow",
		"Gingerbread house with candy decorations",
		"Christmas stocking filled with toys and candy canes",
	},
	"animals": {
		"Friendly lion with a big mane",
		"Cute butterfly with detailed wing patterns",
		"Playful monkey swinging from vines",
		"Striped zebra standing in grass",
		"Wise owl perched on a branch",
		"Sleeping cat curled up in a cozy bed",
	},
	"fantasy": {
		"Magical unicorn with a spiraling horn",
		"Dragon breathing colorful flames",
		"Fairy with delicate wings in a forest",
		"Enchanted castle on a hilltop",
		"Phoenix rising from flames",
		"Mermaid swimming with fish in coral reef",
	},
	"nature": {
		"Sunflower field with bees and butterflies",
		"Mountain landscape with trees and stream",
		"Ocean wave with surfer riding it",
		"Forest clearing with deer and woodland creatures",
		"Garden with blooming flowers and vines",
		"Desert with cacti and sand dunes",
	},
}

func (s *OpenAIService) GenerateIdeas(ctx context.Context, quantity int, style string, existingIdeas []string) ([]string, error) {
	if quantity <= 0 {
		return []string{}, nil
	}

	if s.mock {
		ideas, ok := mockIdeas[strings.ToLower(style)]
		if !ok {
			ideas = mockIdeas["animals"]
		}
		return filterIdeas(ideas, existingIdeas, quantity), nil
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.chatModel),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(ideasPrompt(quantity, style, existingIdeas))},
		Temperature: openai.Float(0.9),
		MaxTokens:   openai.Int(2000),
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("generating ideas: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("generating ideas: empty completion")
	}

	return filterIdeas(parseIdeaList(resp.Choices[0].Message.Content), existingIdeas, quantity), nil
}

func ideasPrompt(quantity int, style string, existingIdeas []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a creative designer specializing in coloring pages. Generate %d unique and creative ideas for coloring pages in %q style.\n\n", quantity, style)
	b.WriteString("Previously generated ideas (avoid these):\n")
	for i, idea := range existingIdeas {
		fmt.Fprintf(&b, "%d. %s\n", i+1, idea)
	}
	b.WriteString(`
Requirements:
- Each idea should be specific and detailed
- Ideas must be suitable for coloring pages (line art)
- Make them diverse and interesting
- Each idea should be 1-2 sentences max

Format your response as a numbered list only. Nothing else.`)
	return b.String()
}

var listPrefix = regexp.MustCompile(`^\d+\.\s*`)

func parseIdeaList(content string) []string {
	var ideas []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(listPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			ideas = append(ideas, line)
		}
	}
	return ideas
}

// filterIdeas drops ideas already known to the caller and duplicates, keeping
// order, and returns at most limit entries.
func filterIdeas(ideas, existing []string, limit int) []string {
	seen := make(map[string]struct{}, len(existing)+len(ideas))
	for _, idea := range existing {
		seen[idea] = struct{}{}
	}

	out := make([]string, 0, limit)
	for _, idea := range ideas {
		if len(out) == limit {
			break
		}
		if _, ok := seen[idea]; ok {
			continue
		}
		seen[idea] = struct{}{}
		out = append(out, idea)
	}
	return out
}

func (s *OpenAIService) GenerateSeo(ctx context.Context, title, idea string) (*transfer.SeoContent, error) {
	if s.mock {
		return clampSeo(&transfer.SeoContent{
			SeoTitle:       title + " - Gratis Kleurplaat",
			SeoDescription: "Kleurplaat " + title + " om uit te printen. Gratis kleurplaten voor kinderen.",
			AltText:        title + " kleurplaat voor kinderen",
		}), nil
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.chatModel),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(seoPrompt(title, idea))},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(500),
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("generating seo: %w", err)
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	return parseSeo(content, title, idea), nil
}

func seoPrompt(title, idea string) string {
	return fmt.Sprintf(`Genereer SEO-content voor een kleurplaat met deze titel: %q
Idee: %q

Verstrek:
1. SEO Titel (max 60 tekens)
2. SEO Beschrijving (max 160 tekens)
3. Alt Tekst (max 125 tekens)

Formaat als JSON: {"seoTitle": "...", "seoDescription": "...", "altText": "..."}

BELANGRIJK:
- Alles moet in het Nederlands zijn
- De tekst moet aantrekkelijk zijn voor kleurplaten website
- Zorg voor relevante zoekwoorden
- Beschrijving moet duidelijk en boeiend zijn`, title, idea)
}

// parseSeo reads the model's JSON answer. Code fences are tolerated; anything
// unparseable, and any field left empty, falls back to the title and idea.
func parseSeo(content, title, idea string) *transfer.SeoContent {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	fallback := transfer.SeoContent{SeoTitle: title, SeoDescription: idea, AltText: title}

	var seo transfer.SeoContent
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &seo); err != nil {
		slog.Info("seo response is not valid json, using fallback", "error", err)
		return clampSeo(&fallback)
	}
	if seo.SeoTitle == "" {
		seo.SeoTitle = fallback.SeoTitle
	}
	if seo.SeoDescription == "" {
		seo.SeoDescription = fallback.SeoDescription
	}
	if seo.AltText == "" {
		seo.AltText = fallback.AltText
	}
	return clampSeo(&seo)
}

func clampSeo(seo *transfer.SeoContent) *transfer.SeoContent {
	seo.SeoTitle = utils.Truncate(seo.SeoTitle, maxSeoTitle)
	seo.SeoDescription = utils.Truncate(seo.SeoDescription, maxSeoDescription)
	seo.AltText = utils.Truncate(seo.AltText, maxAltText)
	return seo
}
