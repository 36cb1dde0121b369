package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	cfg "github.com/crosspost-app/composer-api/configs"
	"github.com/crosspost-app/composer-api/internal/composer"
)

// SubmissionFile is one media blob attached to the multipart submission.
type SubmissionFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// SubmissionService posts the assembled request to the submission
// collaborator as a multipart payload. Publishing itself, including honoring
// scheduled_at, is the collaborator's job.
type SubmissionService interface {
	Submit(ctx context.Context, req *composer.SubmissionRequest, files []SubmissionFile) error
}

type submissionService struct {
	cfg    cfg.Config
	client *http.Client
}

func NewSubmissionService(cfg cfg.Config) SubmissionService {
	return &submissionService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (s *submissionService) Submit(ctx context.Context, subReq *composer.SubmissionRequest, files []SubmissionFile) error {
	previewContent, err := json.Marshal(previewWire(subReq.PreviewContent))
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	platformData, err := json.Marshal(platformDataWire(subReq.PlatformData))
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"prompt":                 subReq.Prompt,
		"brand_name":             subReq.BrandName,
		"posting_purpose":        subReq.PostingPurpose,
		"publish_immediately":    strconv.FormatBool(subReq.PublishImmediately),
		"scheduled_at":           subReq.ScheduledAt.UTC().Format(time.RFC3339),
		"preview_content":        string(previewContent),
		"platform_specific_data": string(platformData),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			slog.Info(err.Error())
			return err
		}
	}

	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.Name)
		if err != nil {
			slog.Info(err.Error())
			return err
		}
		if _, err := part.Write(file.Data); err != nil {
			slog.Info(err.Error())
			return err
		}
	}

	if err := writer.Close(); err != nil {
		slog.Info(err.Error())
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SubmissionURL+"/submissions", &body)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.cfg.SubmissionKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.SubmissionKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("submission request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("submission failed with status %d", resp.StatusCode)
	}

	return nil
}

// previewWire renders the content map into the collaborator's shape: bare
// strings keyed by variant, except the video shape for the YouTube key.
func previewWire(preview map[string]composer.Content) map[string]any {
	out := make(map[string]any, len(preview))
	for key, content := range preview {
		switch content.Kind {
		case composer.ContentKindVideo:
			out[key] = map[string]any{
				"content": map[string]any{
					"title":       content.Title,
					"description": content.Description,
					"tags":        content.Tags,
				},
			}
		default:
			out[key] = map[string]any{"content": content.Text}
		}
	}
	return out
}

func platformDataWire(data []composer.PlatformData) []map[string]any {
	out := make([]map[string]any, 0, len(data))
	for _, d := range data {
		out = append(out, map[string]any{
			"platform_type":     d.PlatformType,
			"social_account_id": d.SocialAccountID,
			"call_to_action":    d.CallToAction,
		})
	}
	return out
}
