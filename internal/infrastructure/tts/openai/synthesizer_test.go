package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/v2/option"
	"github.com/stretchr/testify/require"

	"voicepage/internal/config"
	"voicepage/internal/domain/audio"
	"voicepage/internal/domain/tts"
)

var fakeMP3 = []byte{0xff, 0xfb, 0x90, 0x64, 0x00, 0x0f, 0xf0, 0x00}

func newFakeSpeechServer(t *testing.T, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.True(t, strings.HasSuffix(r.URL.Path, "/audio/speech"), r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, got))

		if (*got)["input"] == "fail" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"bad voice","type":"invalid_request_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(fakeMP3)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := newFakeSpeechServer(t, &got)

	cfg := config.DefaultTTSConfig()
	cfg.Instructions = "calm"
	s, err := NewSynthesizer("sk-test", srv.URL, cfg, option.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := s.Synthesize(context.Background(), "hello world")
	require.NoError(t, err)
	require.Equal(t, fakeMP3, out.Data)
	require.Equal(t, audio.FormatMP3, out.Format)

	require.Equal(t, "hello world", got["input"])
	require.Equal(t, "tts-1", got["model"])
	require.Equal(t, "alloy", got["voice"])
	require.Equal(t, "mp3", got["response_format"])
	require.Equal(t, "calm", got["instructions"])
	require.EqualValues(t, 1.0, got["speed"])
}

func TestSynthesizeWithVoice(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := newFakeSpeechServer(t, &got)

	s, err := NewSynthesizer("sk-test", srv.URL+"/", config.DefaultTTSConfig(), option.WithMaxRetries(0))
	require.NoError(t, err)

	nova := s.WithVoice("nova")
	_, err = nova.Synthesize(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, "nova", got["voice"])
	require.Equal(t, "alloy", s.Options().Voice)
	require.Same(t, s, s.WithVoice(""))
}

func TestSynthesizeErrors(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := newFakeSpeechServer(t, &got)

	_, err := NewSynthesizer("", srv.URL, config.DefaultTTSConfig())
	require.Error(t, err)

	bad := config.DefaultTTSConfig()
	bad.ResponseFormat = "ogg"
	_, err = NewSynthesizer("sk-test", srv.URL, bad)
	require.ErrorIs(t, err, audio.ErrUnknownFormat)

	s, err := NewSynthesizer("sk-test", srv.URL, config.DefaultTTSConfig(), option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = s.Synthesize(context.Background(), "")
	require.ErrorIs(t, err, tts.ErrEmptyText)

	_, err = s.Synthesize(context.Background(), "fail")
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
	require.ErrorIs(t, err, tts.ErrUpstream)
}
