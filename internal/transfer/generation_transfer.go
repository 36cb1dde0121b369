package transfer

import "encoding/json"

// GenerationRequest is the wire request to the AI generation collaborator.
type GenerationRequest struct {
	Prompt         string   `json:"prompt"`
	PlatformType   []string `json:"platform_type"`
	Hashtags       []string `json:"hashtags"`
	BrandName      string   `json:"brand_name"`
	CallToAction   string   `json:"call_to_action"`
	PostingPurpose string   `json:"posting_purpose"`
	AIPlatform     string   `json:"ai_platform"`
}

// GeneratedItem is one entry of the generation response map. Content is a
// bare string for most variant keys and a GeneratedVideo object for the
// YouTube key, so it stays raw until the client shapes it.
type GeneratedItem struct {
	Content json.RawMessage `json:"content"`
}

type GeneratedVideo struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type GenerationErrorResponse struct {
	Error string `json:"error"`
}
