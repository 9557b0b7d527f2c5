package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	config "github.com/maheshrc27/colorpress/configs"
	"github.com/maheshrc27/colorpress/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/openai/openai-go/v3"
	"golang.org/x/time/rate"
)

const maxImageBytes = 20 << 20

type ImageGenerator interface {
	GenerateImage(ctx context.Context, idea, themeID string) (string, error)
}

type imageService struct {
	client     openai.Client
	model      string
	limiter    *rate.Limiter
	timeout    time.Duration
	store      ImageStore
	httpClient *http.Client
	grayscale  bool
	mock       bool
}

func NewImageService(cfg config.Config, store ImageStore) ImageGenerator {
	perMinute := cfg.OpenAI.ImagesPerMinute
	if perMinute <= 0 {
		perMinute = 5
	}
	return &imageService{
		client:     openai.NewClient(openAIOptions(cfg.OpenAI)...),
		model:      cfg.OpenAI.ImageModel,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		timeout:    cfg.OpenAI.Timeout,
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		grayscale:  cfg.ImageGrayscale,
		mock:       cfg.UseMock(),
	}
}

func placeholderURL(idea string) string {
	text := strings.ReplaceAll(url.QueryEscape(utils.Truncate(idea, 30)), "+", "%20")
	return "https://via.placeholder.com/1024x1024?text=" + text
}

func (s *imageService) GenerateImage(ctx context.Context, idea, themeID string) (string, error) {
	if s.mock {
		return placeholderURL(idea), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for image rate limit: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         imagePrompt(idea),
		Model:          openai.ImageModel(s.model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize("1024x1024"),
		Quality:        openai.ImageGenerateParamsQuality("hd"),
		ResponseFormat: openai.ImageGenerateParamsResponseFormat("b64_json"),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("generating image: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", errors.New("generating image: empty response")
	}

	var data []byte
	switch img := resp.Data[0]; {
	case img.B64JSON != "":
		data, err = base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return "", fmt.Errorf("decoding image: %w", err)
		}
	case img.URL != "":
		data, err = s.download(ctx, img.URL)
		if err != nil {
			return "", err
		}
	default:
		return "", errors.New("generating image: no image in response")
	}

	data, kind, err := s.normalize(data)
	if err != nil {
		return "", err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	key := fmt.Sprintf("%s-%s-%s.%s", themeID, utils.Slugify(utils.Truncate(idea, 30)), id, kind.Extension)

	imageURL, err := s.store.Save(ctx, key, data, kind.MIME.Value)
	if err != nil {
		return "", fmt.Errorf("storing image: %w", err)
	}
	return imageURL, nil
}

func (s *imageService) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading image: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// normalize checks the payload really is a PNG or JPEG and, when enabled,
// converts it to a grayscale PNG.
func (s *imageService) normalize(data []byte) ([]byte, types.Type, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, types.Unknown, fmt.Errorf("detecting image type: %w", err)
	}
	if kind == types.Unknown {
		return nil, types.Unknown, errors.New("unsupported image type")
	}
	switch kind.Extension {
	case "png", "jpg":
	default:
		return nil, types.Unknown, fmt.Errorf("image type %s is not allowed", kind.Extension)
	}

	if !s.grayscale {
		return data, kind, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, types.Unknown, fmt.Errorf("decoding image: %w", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Grayscale(img), imaging.PNG); err != nil {
		return nil, types.Unknown, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), filetype.GetType("png"), nil
}

func imagePrompt(idea string) string {
	return fmt.Sprintf(`Create a children's coloring page drawing for: %q

STYLE REQUIREMENTS (CRITICAL):
- Pure black line art with CLEAN, CLEAR outlines
- NO shading, gradients, or filled areas
- Simple, bold strokes suitable for children to color
- High contrast black lines on pure white background
- Similar style to classic children's coloring books
- Engaging and fun for kids ages 4-12
- Suitable for printing on A4 paper
- Medium complexity - not too simple, not too intricate
- Include some interesting details but keep it manageable

IMPORTANT - UNIQUENESS:
- Create a UNIQUE and ORIGINAL design
- Do NOT copy or resemble existing coloring pages
- Use different angles, compositions, and arrangements

AVOID:
- Photorealism or complex shading
- Gradient or tone variations
- Watercolor or artistic effects
- Too dense or cluttered designs
- Very small details that are hard to color

The design should be a single main illustration that fills most of the page.`, idea)
}
