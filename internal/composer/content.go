package composer

import (
	"errors"
	"sort"
)

type ContentKind string

const (
	ContentKindText  ContentKind = "text"
	ContentKindVideo ContentKind = "video"
)

var (
	ErrContentConfirmed = errors.New("content has been used in a submission and is read-only until discarded")
	ErrNoContentEntry   = errors.New("no content entry for that variant")
)

// Content is the tagged variant carried per variant key: plain text copy for
// most platforms, title/description/tags for YouTube. The kind is decided by
// the platform, never by inspecting fields at use sites.
type Content struct {
	Kind        ContentKind `json:"kind"`
	Text        string      `json:"text,omitempty"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
}

func TextContent(text string) Content {
	return Content{Kind: ContentKindText, Text: text}
}

func VideoContent(title, description string, tags []string) Content {
	return Content{Kind: ContentKindVideo, Title: title, Description: description, Tags: tags}
}

// ManualDraft is the single shared fallback content, always editable, used by
// any variant without an AI content entry.
type ManualDraft struct {
	Text  string   `json:"text"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func (d ManualDraft) IsEmpty() bool {
	return d.Text == ""
}

// contentShape returns the content kind a variant key resolves to.
func contentShape(key string) ContentKind {
	if key == PlatformYoutube {
		return ContentKindVideo
	}
	return ContentKindText
}

// ContentStore holds AI-generated content per variant key. A key with no
// entry falls back to the manual draft on resolve. Entries used in a
// successful submission are confirmed and read-only until discarded.
type ContentStore struct {
	entries   map[string]Content
	confirmed map[string]struct{}
}

func NewContentStore() *ContentStore {
	return &ContentStore{
		entries:   make(map[string]Content),
		confirmed: make(map[string]struct{}),
	}
}

// Apply merges a generation batch additively: keys absent from the batch keep
// their existing entries, so generating for one platform never erases content
// generated for another. Confirmed keys are skipped.
func (s *ContentStore) Apply(batch map[string]Content) {
	for key, content := range batch {
		if _, ok := s.confirmed[key]; ok {
			continue
		}
		s.entries[key] = content
	}
}

// Resolve returns the stored AI content for key, or the manual draft shaped
// for the key's platform when no entry exists.
func (s *ContentStore) Resolve(key string, draft ManualDraft) Content {
	if content, ok := s.entries[key]; ok {
		return content
	}
	if contentShape(key) == ContentKindVideo {
		return VideoContent(draft.Title, draft.Text, draft.Tags)
	}
	return TextContent(draft.Text)
}

func (s *ContentStore) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Keys returns the keys with stored entries, sorted.
func (s *ContentStore) Keys() []string {
	out := make([]string, 0, len(s.entries))
	for key := range s.entries {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Update replaces the entry for key, rejecting confirmed (read-only) keys.
func (s *ContentStore) Update(key string, content Content) error {
	if _, ok := s.entries[key]; !ok {
		return ErrNoContentEntry
	}
	if _, ok := s.confirmed[key]; ok {
		return ErrContentConfirmed
	}
	s.entries[key] = content
	return nil
}

// Discard removes the entry and its confirmation flag together; they are not
// independently revocable.
func (s *ContentStore) Discard(key string) {
	delete(s.entries, key)
	delete(s.confirmed, key)
}

// Confirm marks existing entries as used by a successful submission.
func (s *ContentStore) Confirm(keys ...string) {
	for _, key := range keys {
		if _, ok := s.entries[key]; ok {
			s.confirmed[key] = struct{}{}
		}
	}
}

func (s *ContentStore) Confirmed(key string) bool {
	_, ok := s.confirmed[key]
	return ok
}

// Editable reports whether the entry for key may still be modified.
func (s *ContentStore) Editable(key string) bool {
	return s.Has(key) && !s.Confirmed(key)
}

func (s *ContentStore) Len() int {
	return len(s.entries)
}

func (s *ContentStore) IsEmpty() bool {
	return len(s.entries) == 0
}

func (s *ContentStore) Clear() {
	s.entries = make(map[string]Content)
	s.confirmed = make(map[string]struct{})
}

func (s *ContentStore) snapshot() (map[string]Content, []string) {
	entries := make(map[string]Content, len(s.entries))
	for key, content := range s.entries {
		entries[key] = content
	}
	confirmed := make([]string, 0, len(s.confirmed))
	for key := range s.confirmed {
		confirmed = append(confirmed, key)
	}
	sort.Strings(confirmed)
	return entries, confirmed
}

func (s *ContentStore) restore(entries map[string]Content, confirmed []string) {
	s.entries = make(map[string]Content, len(entries))
	for key, content := range entries {
		s.entries[key] = content
	}
	s.confirmed = make(map[string]struct{}, len(confirmed))
	for _, key := range confirmed {
		s.confirmed[key] = struct{}{}
	}
}
