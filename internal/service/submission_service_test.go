package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cfg "github.com/crosspost-app/composer-api/configs"
	"github.com/crosspost-app/composer-api/internal/composer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitBuildsMultipartPayload(t *testing.T) {
	scheduled := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/submissions", r.URL.Path)
		require.Equal(t, "Bearer sub-key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(32<<20))

		assert.Equal(t, "launch copy", r.FormValue("prompt"))
		assert.Equal(t, "Acme", r.FormValue("brand_name"))
		assert.Equal(t, "false", r.FormValue("publish_immediately"))
		assert.Equal(t, "2026-03-01T09:30:00Z", r.FormValue("scheduled_at"))

		var preview map[string]map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("preview_content")), &preview))
		assert.Equal(t, "fb copy", preview["facebook-page"]["content"])
		video, ok := preview["youtube"]["content"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "t", video["title"])
		assert.Equal(t, "d", video["description"])

		var platformData []map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("platform_specific_data")), &platformData))
		require.Len(t, platformData, 2)
		assert.Equal(t, "facebook-page", platformData[0]["platform_type"])
		assert.Equal(t, float64(1), platformData[0]["social_account_id"])

		parts := r.MultipartForm.File["files"]
		require.Len(t, parts, 1)
		assert.Equal(t, "clip.mp4", parts[0].Filename)
		f, err := parts[0].Open()
		require.NoError(t, err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, []byte("video-bytes"), data)

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	s := NewSubmissionService(cfg.Config{SubmissionURL: server.URL, SubmissionKey: "sub-key"})
	err := s.Submit(context.Background(), &composer.SubmissionRequest{
		Prompt:      "launch copy",
		BrandName:   "Acme",
		ScheduledAt: scheduled,
		PreviewContent: map[string]composer.Content{
			"facebook-page": composer.TextContent("fb copy"),
			"youtube":       composer.VideoContent("t", "d", []string{"go"}),
		},
		PlatformData: []composer.PlatformData{
			{PlatformType: "facebook-page", SocialAccountID: 1},
			{PlatformType: "youtube", SocialAccountID: 3},
		},
	}, []SubmissionFile{
		{Name: "clip.mp4", ContentType: "video/mp4", Data: []byte("video-bytes")},
	})
	require.NoError(t, err)
}

func TestSubmitRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	s := NewSubmissionService(cfg.Config{SubmissionURL: server.URL})
	err := s.Submit(context.Background(), &composer.SubmissionRequest{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
}
