package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-mixdown/internal/config"
)

func TestNewService_NoAPIKey(t *testing.T) {
	assert.Nil(t, NewService(&config.TTSConfig{}))
}

func TestGenerateSpeech(t *testing.T) {
	var got ttsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("xi-api-key"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	svc := NewService(&config.TTSConfig{APIKey: "secret", Model: "m1", BaseURL: srv.URL + "/", RequestTimeout: time.Second})
	audio, err := svc.GenerateSpeech(context.Background(), "Hallo", "voice-1")
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, ttsRequest{Text: "Hallo", ModelID: "m1"}, got)
}

func TestGenerateSpeech_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewService(&config.TTSConfig{APIKey: "k", BaseURL: srv.URL, RequestTimeout: time.Second})
	_, err := svc.GenerateSpeech(context.Background(), "x", "v")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "rate limit")
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxRunes int
		want     []string
	}{
		{"empty", "   ", 10, nil},
		{"no limit", "One. Two.", 0, []string{"One. Two."}},
		{"fits", "One. Two.", 50, []string{"One. Two."}},
		{"sentence per chunk", "First one. Second one.", 12, []string{"First one.", "Second one."}},
		{"packs sentences", "A. B. C. D.", 5, []string{"A. B.", "C. D."}},
		{"long sentence at space", "alpha beta gamma", 11, []string{"alpha beta", "gamma"}},
		{"hard split", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"newlines", "Line one\nLine two", 9, []string{"Line one", "Line two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitText(tt.text, tt.maxRunes))
		})
	}
}

func TestSplitText_RespectsLimit(t *testing.T) {
	text := strings.Repeat("Het weer is vandaag wisselvallig met af en toe een bui. ", 40)
	chunks := SplitText(text, 120)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 120)
	}
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(chunks, " "))
}
