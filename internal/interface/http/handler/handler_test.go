package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"voicepage/internal/domain/audio"
	"voicepage/internal/domain/message"
	"voicepage/internal/domain/tts"
	"voicepage/internal/infrastructure/storage"
	"voicepage/internal/render"
	ucpage "voicepage/internal/usecase/page"
)

type stubSynth struct{ voice string }

func (s *stubSynth) Synthesize(_ context.Context, text string) (*tts.Audio, error) {
	if text == "too long" {
		return nil, errors.Wrap(tts.ErrTextTooLong, "stub")
	}
	if text == "upstream down" {
		return nil, errors.Wrap(tts.ErrUpstream, "openai error 503")
	}
	if text == "internal" {
		return nil, errors.New("unexpected")
	}
	return &tts.Audio{Data: append([]byte{0xff, 0xfb}, s.voice+":"+text...), Format: audio.FormatMP3}, nil
}

func (s *stubSynth) WithVoice(voice string) tts.Synthesizer { return &stubSynth{voice: voice} }

type stubRepo struct{}

func (stubRepo) GetByID(_ context.Context, id message.ID) (*message.EmailMessage, error) {
	if id != "m1" {
		return nil, errors.Wrapf(message.ErrNotFound, "%s", id)
	}
	return &message.EmailMessage{ID: id, Subject: "Weekly", Body: "Mail body text."}, nil
}

func (stubRepo) List(_ context.Context, q string, _ int64) ([]message.Summary, error) {
	if q == "unauthorized" {
		return nil, errors.Wrap(message.ErrUnavailable, "gmail: token missing")
	}
	if q == "down" {
		return nil, errors.Wrap(message.ErrUpstream, "gmail list messages: backend error")
	}
	return []message.Summary{{ID: "m1", Subject: "Weekly"}}, nil
}

func (stubRepo) LatestID(_ context.Context, q string) (message.ID, error) {
	if q == "none" {
		return "", message.ErrNotFound
	}
	return "m1", nil
}

func newTestApp(t *testing.T, withGmail bool) *fiber.App {
	t.Helper()

	r, err := render.New("en")
	require.NoError(t, err)
	dir := t.TempDir()
	pages := storage.NewPageStore(filepath.Join(dir, "pages"))
	synth := &stubSynth{voice: "alloy"}
	fromText := ucpage.NewRenderFromText(synth, r, pages, storage.NewFileStore(filepath.Join(dir, "audio")))

	h := Handlers{
		Pages: NewPageHandler(fromText, nil, pages),
		TTS:   NewTTSHandler(synth),
	}
	if withGmail {
		repo := stubRepo{}
		h.Pages = NewPageHandler(fromText, ucpage.NewRenderFromMessage(repo, fromText), pages)
		h.Messages = NewMessageListHandler(repo)
	} else {
		h.Messages = NewMessageListHandler(nil)
	}
	return NewApp(h)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, accept string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readAll(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return b
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	resp := doJSON(t, newTestApp(t, false), http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(readAll(t, resp)))
}

func TestCreatePageHTML(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	resp := doJSON(t, app, http.MethodPost, "/pages", map[string]string{"title": "Hello", "text": "Spoken text."}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
	loc := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/pages/"))

	body := readAll(t, resp)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, "Hello", doc.Find("h1").Text())
	src, _ := doc.Find("audio source").Attr("src")
	format, data, err := audio.ParseDataURI(src)
	require.NoError(t, err)
	require.Equal(t, audio.FormatMP3, format)
	require.Equal(t, append([]byte{0xff, 0xfb}, "alloy:Spoken text."...), data)

	// stored copy is served back verbatim
	resp = doJSON(t, app, http.MethodGet, loc, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, body, readAll(t, resp))
}

func TestCreatePageJSON(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	resp := doJSON(t, app, http.MethodPost, "/pages", map[string]string{"text": "hi", "voice": "nova"}, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		ID          string `json:"id"`
		AudioBase64 string `json:"audioBase64"`
		MIMEType    string `json:"mimeType"`
	}
	require.NoError(t, json.Unmarshal(readAll(t, resp), &out))
	require.NotEmpty(t, out.ID)
	require.Equal(t, "audio/mpeg", out.MIMEType)
	data, err := audio.DecodeBase64(out.AudioBase64)
	require.NoError(t, err)
	require.Equal(t, append([]byte{0xff, 0xfb}, "nova:hi"...), data)

	resp = doJSON(t, app, http.MethodPost, "/pages?format=json", map[string]string{"text": "hi"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"))
}

func TestPageErrors(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{name: "empty text", method: http.MethodPost, path: "/pages", body: map[string]string{"text": "  "}, status: http.StatusBadRequest},
		{name: "too long", method: http.MethodPost, path: "/pages", body: map[string]string{"text": "too long"}, status: http.StatusRequestEntityTooLarge},
		{name: "upstream failure", method: http.MethodPost, path: "/pages", body: map[string]string{"text": "upstream down"}, status: http.StatusBadGateway},
		{name: "internal failure", method: http.MethodPost, path: "/pages", body: map[string]string{"text": "internal"}, status: http.StatusInternalServerError},
		{name: "bad id", method: http.MethodGet, path: "/pages/not-a-uuid", status: http.StatusBadRequest},
		{name: "unknown page", method: http.MethodGet, path: "/pages/6ba7b810-9dad-11d1-80b4-00c04fd430c8", status: http.StatusNotFound},
		{name: "gmail not configured", method: http.MethodPost, path: "/messages/m1/page", status: http.StatusServiceUnavailable},
		{name: "list without gmail", method: http.MethodGet, path: "/messages", status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, tt.method, tt.path, tt.body, "")
			require.Equal(t, tt.status, resp.StatusCode)

			var e struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(readAll(t, resp), &e))
			require.NotEmpty(t, e.Error)
		})
	}
}

func TestMessageRoutes(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, true)

	resp := doJSON(t, app, http.MethodPost, "/messages/m1/page?limit=4", nil, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		AudioBase64 string `json:"audioBase64"`
	}
	require.NoError(t, json.Unmarshal(readAll(t, resp), &out))
	data, err := audio.DecodeBase64(out.AudioBase64)
	require.NoError(t, err)
	require.Equal(t, append([]byte{0xff, 0xfb}, "alloy:Mail"...), data)

	resp = doJSON(t, app, http.MethodPost, "/messages/zz/page", nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/messages?max=3", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(readAll(t, resp)), `"subject":"Weekly"`)

	resp = doJSON(t, app, http.MethodGet, "/messages?q=down", nil, "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/messages?q=unauthorized", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/messages/latest", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"id":"m1"}`, string(readAll(t, resp)))

	resp = doJSON(t, app, http.MethodGet, "/messages/latest?q=none", nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTTSRoute(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	resp := doJSON(t, app, http.MethodPost, "/tts", map[string]string{"text": "hey"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.Unmarshal(readAll(t, resp), &out))
	require.Equal(t, "mp3", out["format"])
	require.Equal(t, "audio/mpeg", out["mimeType"])
	require.True(t, audio.IsTemplateSafe(out["audioContent"]))

	resp = doJSON(t, app, http.MethodPost, "/tts", map[string]string{}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEncodeDecodeRoutes(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	raw := []byte{0x00, 0xff, 0xfe, 0x10, 0x80}

	req := httptest.NewRequest(http.MethodPost, "/encode?format=wav", bytes.NewReader(raw))
	req.Header.Set("Content-Type", fiber.MIMEOctetStream)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var enc map[string]string
	require.NoError(t, json.Unmarshal(readAll(t, resp), &enc))
	require.Equal(t, "AP/+EIA=", enc["data"])
	require.Equal(t, "data:audio/wav;base64,AP/+EIA=", enc["dataUri"])

	resp = doJSON(t, app, http.MethodPost, "/decode", map[string]string{"data": enc["data"]}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, raw, readAll(t, resp))

	resp = doJSON(t, app, http.MethodPost, "/decode", map[string]string{"dataUri": enc["dataUri"]}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "audio/wav", resp.Header.Get("Content-Type"))
	require.Equal(t, raw, readAll(t, resp))

	resp = doJSON(t, app, http.MethodPost, "/decode", map[string]string{"data": "not base64!"}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/encode?format=ogg", bytes.NewReader(raw))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
