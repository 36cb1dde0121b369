package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	cfg "github.com/crosspost-app/composer-api/configs"
	"github.com/crosspost-app/composer-api/internal/composer"
	"github.com/crosspost-app/composer-api/internal/transfer"
)

// AIService calls the AI generation collaborator. One request covers a batch
// of variant keys; failure surfaces as a single error with no partial retry.
type AIService interface {
	Generate(ctx context.Context, req *transfer.GenerationRequest) (map[string]composer.Content, error)
}

type aiService struct {
	cfg    cfg.Config
	client *http.Client
}

func NewAIService(cfg cfg.Config) AIService {
	return &aiService{
		cfg:    cfg,
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *aiService) Generate(ctx context.Context, genReq *transfer.GenerationRequest) (map[string]composer.Content, error) {
	body, err := json.Marshal(genReq)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.AIBackendURL+"/generate", bytes.NewReader(body))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.AIBackendKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.AIBackendKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp transfer.GenerationErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("generation failed: %s", errResp.Error)
		}
		return nil, fmt.Errorf("generation failed with status %d", resp.StatusCode)
	}

	var items map[string]transfer.GeneratedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("invalid generation response: %w", err)
	}

	batch := make(map[string]composer.Content, len(items))
	for key, item := range items {
		content, err := shapeContent(key, item)
		if err != nil {
			return nil, err
		}
		batch[key] = content
	}

	return batch, nil
}

// shapeContent converts one raw response entry into the tagged content form:
// the YouTube key carries a title/description/tags object, everything else a
// bare string.
func shapeContent(key string, item transfer.GeneratedItem) (composer.Content, error) {
	if key == composer.PlatformYoutube {
		var video transfer.GeneratedVideo
		if err := json.Unmarshal(item.Content, &video); err != nil {
			slog.Info(err.Error())
			return composer.Content{}, fmt.Errorf("invalid video content for %s: %w", key, err)
		}
		return composer.VideoContent(video.Title, video.Description, video.Tags), nil
	}

	var text string
	if err := json.Unmarshal(item.Content, &text); err != nil {
		slog.Info(err.Error())
		return composer.Content{}, fmt.Errorf("invalid text content for %s: %w", key, err)
	}
	return composer.TextContent(text), nil
}
