package transfer

// DraftUpdate carries manual draft edits plus the shared generation settings.
type DraftUpdate struct {
	Text           string   `json:"text"`
	Title          string   `json:"title"`
	Tags           []string `json:"tags"`
	BrandName      string   `json:"brand_name"`
	CallToAction   string   `json:"call_to_action"`
	PostingPurpose string   `json:"posting_purpose"`
	AIPlatform     string   `json:"ai_platform"`
	Hashtags       []string `json:"hashtags"`
}

type SelectionToggle struct {
	AccountID  int64  `json:"account_id"`
	PostTypeID string `json:"post_type_id"`
}

type SelectionConfirm struct {
	Accept bool `json:"accept"`
}

type MediaRemove struct {
	MediaID string `json:"media_id"`
}

type GenerationTrigger struct {
	PlatformType []string `json:"platform_type"`
}

type ContentDiscard struct {
	VariantKey string `json:"variant_key"`
}

// SubmissionOptions selects immediate or scheduled mode. ScheduledAt is
// RFC 3339; required when publish_immediately is false.
type SubmissionOptions struct {
	PublishImmediately bool   `json:"publish_immediately"`
	ScheduledAt        string `json:"scheduled_at"`
}
