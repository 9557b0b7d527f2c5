package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func imageServer(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/images/generations") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []map[string]any{{"b64_json": base64.StdEncoding.EncodeToString(payload)}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

type memoryStore struct {
	keys  []string
	data  map[string][]byte
	types map[string]string
}

func (m *memoryStore) Save(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if m.data == nil {
		m.data = map[string][]byte{}
		m.types = map[string]string{}
	}
	m.keys = append(m.keys, key)
	m.data[key] = data
	m.types[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func TestGenerateImage_Mock(t *testing.T) {
	s := NewImageService(mockConfig(), &memoryStore{})

	url, err := s.GenerateImage(context.Background(), "Dolfijn & vrienden springen over de golven", "theme-1")
	require.NoError(t, err)
	assert.Equal(t, "https://via.placeholder.com/1024x1024?text=Dolfijn%20%26%20vrienden%20springen%20ov", url)
}

func TestGenerateImage_StoresGrayscalePNG(t *testing.T) {
	srv := imageServer(t, testPNG(t))
	store := &memoryStore{}
	s := NewImageService(liveConfig(srv.URL), store)

	url, err := s.GenerateImage(context.Background(), "Zeeschildpad bij het koraal rif", "theme-1")
	require.NoError(t, err)

	require.Len(t, store.keys, 1)
	key := store.keys[0]
	assert.True(t, strings.HasPrefix(key, "theme-1-zeeschildpad-bij-het-koraal-ri-"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.Equal(t, "https://cdn.example.com/"+key, url)
	assert.Equal(t, "image/png", store.types[key])

	img, err := png.Decode(bytes.NewReader(store.data[key]))
	require.NoError(t, err)
	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestGenerateImage_RejectsNonImage(t *testing.T) {
	srv := imageServer(t, []byte("this is not an image"))
	store := &memoryStore{}
	s := NewImageService(liveConfig(srv.URL), store)

	_, err := s.GenerateImage(context.Background(), "Walvis", "theme-1")
	assert.Error(t, err)
	assert.Empty(t, store.keys)
}

func TestNormalize_UnknownTypeError(t *testing.T) {
	s := &imageService{grayscale: true}

	_, _, err := s.normalize([]byte("this is not an image"))
	require.Error(t, err)
	assert.Equal(t, "unsupported image type", err.Error())

	_, _, err = s.normalize([]byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"))
	require.Error(t, err)
	assert.Equal(t, "image type gif is not allowed", err.Error())
}

func TestDiskStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "t1-walvis-abc.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/images/t1-walvis-abc.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "t1-walvis-abc.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	_, err = store.Save(context.Background(), "../escape.png", []byte("x"), "image/png")
	assert.Error(t, err)
}
