package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	config "github.com/maheshrc27/colorpress/configs"
	"github.com/maheshrc27/colorpress/internal/transfer"
	"golang.org/x/oauth2"
)

const (
	metaSeoTitle       = "_yoast_wpseo_title"
	metaSeoDescription = "_yoast_wpseo_metadesc"
)

// Post is what the sweep hands to the publisher for one approved page.
type Post struct {
	Title          string
	Content        string
	Slug           string
	CategoryID     int64
	SeoTitle       string
	SeoDescription string
}

type Publisher interface {
	ResolveCategory(ctx context.Context, name string) (int64, error)
	Publish(ctx context.Context, post *Post) (int64, error)
	SetPostMeta(ctx context.Context, postID int64, meta map[string]string) error
	ListCategories(ctx context.Context) ([]transfer.Category, error)
	TestConnection(ctx context.Context) *transfer.ConnectionStatus
}

// WordPressError is a non-2xx answer from the REST API.
type WordPressError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *WordPressError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("wordpress: status %d", e.StatusCode)
	}
	return fmt.Sprintf("wordpress: status %d: %s (%s)", e.StatusCode, e.Message, e.Code)
}

type wordPressService struct {
	baseURL  string
	siteURL  string
	username string
	password string
	bearer   bool
	client   *http.Client
}

func NewWordPressService(cfg config.WordPress) Publisher {
	site := strings.TrimSuffix(cfg.URL, "/")
	s := &wordPressService{
		baseURL:  site + "/wp-json/wp/v2",
		siteURL:  site,
		username: cfg.Username,
		password: cfg.Password,
	}

	if cfg.JWTToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.JWTToken, TokenType: "Bearer"})
		s.client = oauth2.NewClient(context.Background(), src)
		s.bearer = true
	} else {
		s.client = &http.Client{}
		if cfg.Username == "" || cfg.Password == "" {
			slog.Warn("wordpress credentials are not set, authenticated requests will fail")
		}
	}
	s.client.Timeout = cfg.Timeout

	return s
}

func (s *wordPressService) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !s.bearer && s.username != "" && s.password != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("wordpress %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		wpErr := &WordPressError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(wpErr)
		slog.Info(wpErr.Error(), "method", method, "path", path)
		return wpErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding wordpress response: %w", err)
	}
	return nil
}

// ResolveCategory looks a category up by exact, case-insensitive name and
// creates it when the site has none.
func (s *wordPressService) ResolveCategory(ctx context.Context, name string) (int64, error) {
	q := url.Values{}
	q.Set("search", name)
	q.Set("per_page", "100")

	var found []transfer.Category
	if err := s.do(ctx, http.MethodGet, "/categories?"+q.Encode(), nil, &found); err != nil {
		return 0, fmt.Errorf("searching category %q: %w", name, err)
	}
	for _, c := range found {
		if strings.EqualFold(c.Name, name) {
			return c.ID, nil
		}
	}

	var created transfer.Category
	if err := s.do(ctx, http.MethodPost, "/categories", map[string]string{"name": name}, &created); err != nil {
		return 0, fmt.Errorf("creating category %q: %w", name, err)
	}
	slog.Info("created wordpress category", "name", name, "id", created.ID)
	return created.ID, nil
}

func (s *wordPressService) Publish(ctx context.Context, post *Post) (int64, error) {
	body := map[string]any{
		"title":      post.Title,
		"content":    post.Content,
		"slug":       post.Slug,
		"status":     "publish",
		"type":       "post",
		"categories": []int64{post.CategoryID},
		"meta": map[string]string{
			"seoTitle":       post.SeoTitle,
			"seoDescription": post.SeoDescription,
		},
	}

	var created struct {
		ID   int64  `json:"id"`
		Link string `json:"link"`
	}
	if err := s.do(ctx, http.MethodPost, "/posts", body, &created); err != nil {
		return 0, fmt.Errorf("publishing %q: %w", post.Title, err)
	}
	if created.ID <= 0 {
		return 0, fmt.Errorf("publishing %q: response has no post id", post.Title)
	}
	return created.ID, nil
}

// SetPostMeta writes one key per request; some SEO plugins reject combined
// meta updates.
func (s *wordPressService) SetPostMeta(ctx context.Context, postID int64, meta map[string]string) error {
	path := "/posts/" + strconv.FormatInt(postID, 10)
	var errs []error
	for key, value := range meta {
		body := map[string]any{"meta": map[string]string{key: value}}
		if err := s.do(ctx, http.MethodPost, path, body, nil); err != nil {
			errs = append(errs, fmt.Errorf("setting %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *wordPressService) ListCategories(ctx context.Context) ([]transfer.Category, error) {
	var categories []transfer.Category
	if err := s.do(ctx, http.MethodGet, "/categories?per_page=100&orderby=name&order=asc", nil, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []transfer.Category{}
	}
	return categories, nil
}

func (s *wordPressService) TestConnection(ctx context.Context) *transfer.ConnectionStatus {
	if err := s.do(ctx, http.MethodGet, "/categories?per_page=1", nil, nil); err != nil {
		return &transfer.ConnectionStatus{Status: false, Message: "Failed to connect: " + err.Error()}
	}

	var me struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := s.do(ctx, http.MethodGet, "/users/me", nil, &me); err == nil {
		slog.Info("wordpress authenticated", "user", me.Name, "id", me.ID)
	}

	if err := s.do(ctx, http.MethodGet, "/posts?per_page=1", nil, nil); err != nil {
		var wpErr *WordPressError
		if errors.As(err, &wpErr) {
			switch wpErr.StatusCode {
			case http.StatusUnauthorized:
				return &transfer.ConnectionStatus{Status: false, Message: "Authentication failed - check WordPress username and application password"}
			case http.StatusForbidden:
				return &transfer.ConnectionStatus{Status: false, Message: "Permission denied - user may not have access to the REST API"}
			}
		}
		return &transfer.ConnectionStatus{Status: false, Message: "Failed to connect: " + err.Error()}
	}

	return &transfer.ConnectionStatus{Status: true, Message: "Connected to WordPress at " + s.siteURL}
}
