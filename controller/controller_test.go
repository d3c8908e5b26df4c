package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	controllers "webdl/controller"
	"webdl/models"
	"webdl/progress"
	"webdl/router"
	"webdl/services"
	"webdl/settings"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeMedia struct {
	mu      sync.Mutex
	info    *models.MediaInfo
	infoErr error
	result  models.DownloadResult

	gotURL  string
	gotDir  string
	gotOpts models.DownloadOptions
}

func (f *fakeMedia) Info(_ context.Context, url string) (*models.MediaInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotURL = url
	return f.info, f.infoErr
}

func (f *fakeMedia) Download(_ context.Context, url, dir string, opts models.DownloadOptions) models.DownloadResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotURL, f.gotDir, f.gotOpts = url, dir, opts
	return f.result
}

func (f *fakeMedia) Dependencies() models.DependencyReport {
	return models.DependencyReport{YTDLPFound: true, YTDLPPath: "/usr/bin/yt-dlp"}
}

type fakeBulk struct {
	got    *models.BulkRequest
	result models.BulkResult
}

func (f *fakeBulk) Run(_ context.Context, req models.BulkRequest) models.BulkResult {
	f.got = &req
	return f.result
}

type fixture struct {
	store  *settings.Store
	media  *fakeMedia
	bulk   *fakeBulk
	hub    *progress.Hub
	engine *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	f := &fixture{
		store: settings.Open(filepath.Join(home, "config.json")),
		media: &fakeMedia{},
		bulk:  &fakeBulk{result: models.BulkResult{Files: []string{}, Errors: []string{}}},
		hub:   progress.NewHub(),
	}
	f.engine = router.SetupRouter(controllers.NewHandler(f.store, f.media, f.bulk, f.hub))
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestIndexRendersSettings(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), f.store.DownloadDir())
}

func TestInfoRequiresURL(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`{}`, `{"url":"   "}`, `{not json`} {
		w := f.do(postJSON("/api/info", body))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Please provide a URL.", decode(t, w)["error"])
	}
}

func TestInfoSuccess(t *testing.T) {
	f := newFixture(t)
	f.media.info = &models.MediaInfo{Title: "Clip", Formats: []models.Format{{FormatID: "18", Extension: "mp4"}}}

	w := f.do(postJSON("/api/info", `{"url":" https://example.com/v "}`))

	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "Clip", out["info"].(map[string]any)["title"])
	assert.Equal(t, "https://example.com/v", f.media.gotURL)
}

func TestInfoFailure(t *testing.T) {
	f := newFixture(t)
	f.media.infoErr = errors.New("boom")

	w := f.do(postJSON("/api/info", `{"url":"https://example.com/v"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Failed to fetch info: boom", decode(t, w)["error"])
}

func TestDownloadDefaultsToConfiguredDir(t *testing.T) {
	f := newFixture(t)
	f.media.result = models.DownloadResult{Success: true, Message: "Download complete.", Files: []string{"/x/a.mp4"}}

	w := f.do(postJSON("/api/download", `{"url":"https://example.com/v","format_id":"720p","audio_only":true}`))

	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, "Download complete.", out["message"])
	assert.Equal(t, []any{"/x/a.mp4"}, out["files"])
	assert.Equal(t, f.store.DownloadDir(), f.media.gotDir)
	assert.Equal(t, models.DownloadOptions{FormatID: "720p", AudioOnly: true}, f.media.gotOpts)
}

func TestDownloadFailure(t *testing.T) {
	f := newFixture(t)
	f.media.result = models.DownloadResult{Success: false, Message: "ERROR: Unsupported URL", Files: []string{}}
	target := t.TempDir()

	w := f.do(postJSON("/api/download", `{"url":"https://example.com/v","target_dir":"`+target+`"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	assert.Equal(t, false, out["ok"])
	assert.Equal(t, "ERROR: Unsupported URL", out["error"])
	assert.Equal(t, target, f.media.gotDir)
}

func TestDownloadRequiresURL(t *testing.T) {
	f := newFixture(t)

	w := f.do(postJSON("/api/download", `{"url":""}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.media.gotURL)
}

func TestBulkRejectsEmptyList(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"urls": {"  \n\n  "}}
	req := httptest.NewRequest(http.MethodPost, "/api/bulk", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := f.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Provide at least one URL.", decode(t, w)["error"])
	assert.Nil(t, f.bulk.got)
}

func TestBulkRejectedRequestEndsSubscription(t *testing.T) {
	tests := []struct {
		name string
		form func(t *testing.T) url.Values
	}{
		{"empty list", func(t *testing.T) url.Values {
			return url.Values{"urls": {"  \n  "}, "request_id": {"req-x"}}
		}},
		{"target is a file", func(t *testing.T) url.Values {
			file := filepath.Join(t.TempDir(), "plain.txt")
			require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
			return url.Values{"urls": {"https://a"}, "target_dir": {file}, "request_id": {"req-x"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			client := f.hub.Register("req-x")

			req := httptest.NewRequest(http.MethodPost, "/api/bulk", strings.NewReader(tt.form(t).Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := f.do(req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, f.bulk.got)
			select {
			case _, ok := <-client.Channel:
				assert.False(t, ok)
			case <-time.After(time.Second):
				t.Fatal("subscriber left open after a rejected bulk request")
			}
			assert.Nil(t, f.hub.Get("req-x"))
		})
	}
}

func TestBulkMergesTextareaAndUpload(t *testing.T) {
	f := newFixture(t)
	f.bulk.result = models.BulkResult{Files: []string{"/d/a.mp4"}, Errors: []string{"bad"}, ArchivePath: "/d/x.zip"}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("urls", "a\n\n  b "))
	require.NoError(t, mw.WriteField("audio_only", "on"))
	require.NoError(t, mw.WriteField("archive", "true"))
	require.NoError(t, mw.WriteField("format_id", "480p"))
	require.NoError(t, mw.WriteField("request_id", "req-7"))
	part, err := mw.CreateFormFile("file", "list.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("c\r\nd\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/bulk", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := f.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.bulk.got)
	assert.Equal(t, []string{"a", "b", "c", "d"}, f.bulk.got.URLs)
	assert.Equal(t, f.store.DownloadDir(), f.bulk.got.TargetDir)
	assert.True(t, f.bulk.got.ArchiveRequested)
	assert.Equal(t, models.DownloadOptions{FormatID: "480p", AudioOnly: true}, f.bulk.got.Options)
	assert.Equal(t, "req-7", f.bulk.got.RequestID)

	out := decode(t, w)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, []any{"/d/a.mp4"}, out["files"])
	assert.Equal(t, []any{"bad"}, out["errors"])
	assert.Equal(t, "/d/x.zip", out["archive"])
	assert.Equal(t, "req-7", out["request_id"])
}

func TestBulkAllFailedEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.media.result = models.DownloadResult{Success: false, Message: "nope", Files: []string{}}
	h := controllers.NewHandler(f.store, f.media, services.NewBulk(f.media, f.store, f.hub), f.hub)
	engine := router.SetupRouter(h)

	form := url.Values{"urls": {"https://a\nhttps://b"}}
	req := httptest.NewRequest(http.MethodPost, "/api/bulk", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, false, out["ok"])
	assert.Equal(t, []any{}, out["files"])
	assert.Equal(t, []any{"nope", "nope"}, out["errors"])
	assert.NotContains(t, out, "archive")
	assert.NotEmpty(t, out["request_id"])
}

func TestSettingsRoundTrip(t *testing.T) {
	f := newFixture(t)
	newDir := filepath.Join(t.TempDir(), "media")

	w := f.do(postJSON("/api/settings", `{"download_dir":"`+newDir+`","auto_archive_bulk":true}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.DirExists(t, newDir)

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)["settings"].(map[string]any)
	assert.Equal(t, newDir, got["download_dir"])
	assert.Equal(t, true, got["auto_archive_bulk"])
}

func TestSettingsPartialUpdate(t *testing.T) {
	f := newFixture(t)
	before := f.store.DownloadDir()

	w := f.do(postJSON("/api/settings", `{"auto_archive_bulk":true}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before, f.store.DownloadDir())
	assert.True(t, f.store.AutoArchiveBulk())
}

func TestSettingsIgnoresMalformedBody(t *testing.T) {
	f := newFixture(t)
	before := f.store.Get()

	for _, body := range []string{`{"download_dir":`, `[1,2]`, ``, `{"download_dir":42}`} {
		w := f.do(postJSON("/api/settings", body))
		require.Equal(t, http.StatusOK, w.Code, body)
		assert.Equal(t, true, decode(t, w)["ok"])
		assert.Equal(t, before, f.store.Get(), body)
	}
}

func TestSettingsCoercesArchiveFlag(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{`1`, true},
		{`0`, false},
		{`"yes"`, true},
		{`""`, false},
		{`true`, true},
		{`false`, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			f := newFixture(t)
			f.store.SetAutoArchiveBulk(!tt.want)

			w := f.do(postJSON("/api/settings", `{"auto_archive_bulk":`+tt.value+`}`))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, f.store.AutoArchiveBulk())
		})
	}

	f := newFixture(t)
	f.store.SetAutoArchiveBulk(true)
	f.do(postJSON("/api/settings", `{"auto_archive_bulk":null}`))
	assert.True(t, f.store.AutoArchiveBulk(), "null leaves the flag alone")
}

func TestSettingsRejectsUnusableDirectory(t *testing.T) {
	f := newFixture(t)

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	w := f.do(postJSON("/api/settings", `{"download_dir":"`+file+`"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEqual(t, file, f.store.DownloadDir())
}

func TestFileHandler(t *testing.T) {
	f := newFixture(t)
	dir := f.store.DownloadDir()
	inside := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(inside, []byte("video"), 0o644))
	outside := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	get := func(p string) *httptest.ResponseRecorder {
		return f.do(httptest.NewRequest(http.MethodGet, "/files?path="+url.QueryEscape(p), nil))
	}

	w := get(inside)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	assert.Equal(t, http.StatusBadRequest, get("").Code)
	assert.Equal(t, http.StatusForbidden, get(outside).Code)
	assert.Equal(t, http.StatusForbidden, get(filepath.Join(dir, "..", "config.json")).Code)
	assert.Equal(t, http.StatusNotFound, get(filepath.Join(dir, "missing.mp4")).Code)
	assert.Equal(t, http.StatusNotFound, get(dir).Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	health := decode(t, w)["health"].(map[string]any)
	assert.NotNil(t, health["disk"])
}
