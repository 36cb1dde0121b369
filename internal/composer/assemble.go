package composer

import (
	"errors"
	"time"
)

var (
	ErrNothingToSubmit    = errors.New("add a caption or attach media before submitting")
	ErrNoAccountsSelected = errors.New("select at least one account and post type before submitting")
	ErrScheduleMissing    = errors.New("a scheduled submission needs a scheduled time")
	ErrScheduleNotFuture  = errors.New("scheduled time must be in the future")
)

// PlatformData is one per-variant entry of the submission payload.
type PlatformData struct {
	PlatformType    string `json:"platform_type"`
	SocialAccountID int64  `json:"social_account_id"`
	CallToAction    string `json:"call_to_action"`
}

// SubmissionRequest is the fully assembled payload handed to the submission
// collaborator. ScheduledAt is always set: the assembly time for immediate
// submissions, the validated future time otherwise.
type SubmissionRequest struct {
	Prompt             string
	BrandName          string
	PostingPurpose     string
	PublishImmediately bool
	ScheduledAt        time.Time
	PreviewContent     map[string]Content
	PlatformData       []PlatformData
	Media              []MediaItem
}

// AssembleOptions control the submission mode.
type AssembleOptions struct {
	PublishImmediately bool
	ScheduledAt        time.Time
	// Now overrides the clock; zero means time.Now. Used by tests.
	Now time.Time
}

// Assemble merges selection, resolved content, manual draft and media into a
// single submission request. Pure read: no source state is mutated and no I/O
// happens here.
func (s *CompositionSession) Assemble(opts AssembleOptions) (*SubmissionRequest, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	if s.Draft.IsEmpty() && s.Media.IsEmpty() {
		return nil, ErrNothingToSubmit
	}
	if s.Selector.IsEmpty() {
		return nil, ErrNoAccountsSelected
	}

	scheduledAt := now
	if !opts.PublishImmediately {
		if opts.ScheduledAt.IsZero() {
			return nil, ErrScheduleMissing
		}
		if !opts.ScheduledAt.After(now) {
			return nil, ErrScheduleNotFuture
		}
		scheduledAt = opts.ScheduledAt
	}

	preview := make(map[string]Content)
	var platformData []PlatformData
	for _, accountID := range s.Selector.SelectedAccounts() {
		acc, ok := s.Selector.AccountByID(accountID)
		if !ok {
			continue
		}
		for _, postTypeID := range s.Selector.Selected(accountID) {
			key := VariantKey(acc.PlatformID, postTypeID)
			preview[key] = s.Content.Resolve(key, s.Draft)
			platformData = append(platformData, PlatformData{
				PlatformType:    key,
				SocialAccountID: accountID,
				CallToAction:    s.Settings.CallToAction,
			})
		}
	}

	return &SubmissionRequest{
		Prompt:             s.Draft.Text,
		BrandName:          s.Settings.BrandName,
		PostingPurpose:     s.Settings.PostingPurpose,
		PublishImmediately: opts.PublishImmediately,
		ScheduledAt:        scheduledAt,
		PreviewContent:     preview,
		PlatformData:       platformData,
		Media:              s.Media.Items(),
	}, nil
}

// ContentKeysInUse returns the variant keys the request resolved from stored
// AI entries, for confirmation after a successful submission.
func (s *CompositionSession) ContentKeysInUse() []string {
	var keys []string
	for _, accountID := range s.Selector.SelectedAccounts() {
		acc, ok := s.Selector.AccountByID(accountID)
		if !ok {
			continue
		}
		for _, postTypeID := range s.Selector.Selected(accountID) {
			key := VariantKey(acc.PlatformID, postTypeID)
			if s.Content.Has(key) {
				keys = append(keys, key)
			}
		}
	}
	return keys
}
