package composer

import (
	"errors"
	"strings"
)

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

var ErrMixedMediaKinds = errors.New("cannot mix images and videos in the same post")

// MediaItem is one attached file with its derived attributes. Immutable once
// created; the stored blob under ID is released when the item leaves the set.
type MediaItem struct {
	ID              string    `json:"id"`
	Kind            MediaKind `json:"kind"`
	FileName        string    `json:"file_name"`
	Extension       string    `json:"extension"`
	ContentType     string    `json:"content_type"`
	ByteSize        int64     `json:"byte_size"`
	Width           int       `json:"width,omitempty"`
	Height          int       `json:"height,omitempty"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
}

// Landscape reports whether the item is wider than tall. Only meaningful for
// images with known dimensions.
func (m MediaItem) Landscape() bool {
	return m.Width > 0 && m.Height > 0 && m.Width > m.Height
}

// MediaSet is the ordered collection of attached media. Invariant: the set is
// homogeneous, holding images or videos but never both.
type MediaSet struct {
	items []MediaItem
}

func NewMediaSet() *MediaSet {
	return &MediaSet{}
}

// Add appends an item, rejecting any kind that conflicts with the items
// already present. On rejection the prior set is untouched.
func (s *MediaSet) Add(item MediaItem) error {
	for _, existing := range s.items {
		if existing.Kind != item.Kind {
			return ErrMixedMediaKinds
		}
	}
	s.items = append(s.items, item)
	return nil
}

// Remove deletes the item with the given id, returning it so the caller can
// release its stored blob.
func (s *MediaSet) Remove(id string) (MediaItem, bool) {
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return item, true
		}
	}
	return MediaItem{}, false
}

// Items returns a copy of the set in attachment order.
func (s *MediaSet) Items() []MediaItem {
	out := make([]MediaItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *MediaSet) Len() int {
	return len(s.items)
}

func (s *MediaSet) IsEmpty() bool {
	return len(s.items) == 0
}

func (s *MediaSet) CountKind(kind MediaKind) int {
	n := 0
	for _, item := range s.items {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

func (s *MediaSet) HasVideo() bool {
	return s.CountKind(MediaKindVideo) > 0
}

func (s *MediaSet) HasImage() bool {
	return s.CountKind(MediaKindImage) > 0
}

func (s *MediaSet) Clear() {
	s.items = nil
}

func (s *MediaSet) restore(items []MediaItem) {
	s.items = make([]MediaItem, len(items))
	copy(s.items, items)
}

// KindForMIME maps a sniffed MIME type to a media kind.
func KindForMIME(mime string) (MediaKind, bool) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return MediaKindImage, true
	case strings.HasPrefix(mime, "video/"):
		return MediaKindVideo, true
	default:
		return "", false
	}
}
