package composer

import (
	"encoding/json"
	"strconv"
)

// GenerationSettings is the shared metadata fed to the AI generation
// collaborator and echoed into the submission payload.
type GenerationSettings struct {
	BrandName      string   `json:"brand_name"`
	CallToAction   string   `json:"call_to_action"`
	PostingPurpose string   `json:"posting_purpose"`
	AIPlatform     string   `json:"ai_platform"`
	Hashtags       []string `json:"hashtags"`
}

// CompositionSession is the aggregate holding one in-progress composition:
// media, selection, AI content, gate state and the manual draft. It is a pure
// in-memory value; persistence happens only through (Un)MarshalJSON at the
// boundary.
type CompositionSession struct {
	ID       string
	Media    *MediaSet
	Selector *VariantSelector
	Content  *ContentStore
	Gate     *ConfirmationGate
	Draft    ManualDraft
	Settings GenerationSettings

	// GenerationError is the last generation failure, retained until cleared
	// by the next attempt.
	GenerationError string
}

func NewCompositionSession(id string, accounts []Account) *CompositionSession {
	media := NewMediaSet()
	return &CompositionSession{
		ID:       id,
		Media:    media,
		Selector: NewVariantSelector(media, accounts),
		Content:  NewContentStore(),
		Gate:     NewConfirmationGate(),
	}
}

// Reset clears selection, content store, media set and manual draft together.
// Called only after a successful submission; a failed one preserves all state
// for retry.
func (s *CompositionSession) Reset() {
	s.Media.Clear()
	s.Selector.DeselectAll()
	s.Content.Clear()
	s.Gate.Clear()
	s.Draft = ManualDraft{}
	s.GenerationError = ""
}

// VariantView is the per-pair selectability matrix the editing surface renders.
type VariantView struct {
	AccountID   int64  `json:"account_id"`
	AccountName string `json:"account_name"`
	PlatformID  string `json:"platform_id"`
	PostTypeID  string `json:"post_type_id"`
	VariantKey  string `json:"variant_key"`
	Selectable  bool   `json:"selectable"`
	Selected    bool   `json:"selected"`
	HasContent  bool   `json:"has_ai_content"`
}

// Variants flattens accounts x descriptors into the current selectability
// matrix.
func (s *CompositionSession) Variants() []VariantView {
	var out []VariantView
	for _, acc := range s.Selector.Accounts() {
		for _, d := range DescriptorsFor(acc.PlatformID) {
			key := KeyForDescriptor(d)
			out = append(out, VariantView{
				AccountID:   acc.ID,
				AccountName: acc.DisplayName,
				PlatformID:  acc.PlatformID,
				PostTypeID:  d.PostTypeID,
				VariantKey:  key,
				Selectable:  s.Selector.IsSelectable(acc, d.PostTypeID),
				Selected:    s.Selector.IsSelected(acc.ID, d.PostTypeID),
				HasContent:  s.Content.Has(key),
			})
		}
	}
	return out
}

// sessionState is the serialized form of a CompositionSession. Selection keys
// are stringified account ids since JSON object keys are strings.
type sessionState struct {
	ID              string              `json:"id"`
	Media           []MediaItem         `json:"media"`
	Accounts        []Account           `json:"accounts"`
	Selection       map[string][]string `json:"selection"`
	ContentEntries  map[string]Content  `json:"content_entries"`
	ConfirmedKeys   []string            `json:"confirmed_keys"`
	Pending         *SelectionAttempt   `json:"pending_selection,omitempty"`
	Draft           ManualDraft         `json:"draft"`
	Settings        GenerationSettings  `json:"settings"`
	GenerationError string              `json:"generation_error,omitempty"`
}

func (s *CompositionSession) MarshalJSON() ([]byte, error) {
	selection := make(map[string][]string)
	for id, types := range s.Selector.Selection() {
		selection[strconv.FormatInt(id, 10)] = types
	}
	entries, confirmed := s.Content.snapshot()
	return json.Marshal(sessionState{
		ID:              s.ID,
		Media:           s.Media.Items(),
		Accounts:        s.Selector.Accounts(),
		Selection:       selection,
		ContentEntries:  entries,
		ConfirmedKeys:   confirmed,
		Pending:         s.Gate.Pending(),
		Draft:           s.Draft,
		Settings:        s.Settings,
		GenerationError: s.GenerationError,
	})
}

func (s *CompositionSession) UnmarshalJSON(data []byte) error {
	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}

	selection := make(map[int64][]string, len(state.Selection))
	for key, types := range state.Selection {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return err
		}
		selection[id] = types
	}

	media := NewMediaSet()
	media.restore(state.Media)
	selector := NewVariantSelector(media, state.Accounts)
	selector.restore(selection)
	content := NewContentStore()
	content.restore(state.ContentEntries, state.ConfirmedKeys)
	gate := NewConfirmationGate()
	gate.restore(state.Pending)

	s.ID = state.ID
	s.Media = media
	s.Selector = selector
	s.Content = content
	s.Gate = gate
	s.Draft = state.Draft
	s.Settings = state.Settings
	s.GenerationError = state.GenerationError
	return nil
}
