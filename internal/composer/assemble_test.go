package composer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionFixture(t *testing.T, items ...MediaItem) *CompositionSession {
	t.Helper()
	sess := NewCompositionSession("ses_1", testAccounts())
	for _, item := range items {
		require.NoError(t, sess.Media.Add(item))
	}
	return sess
}

func TestAssemblePreconditions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no content and no media", func(t *testing.T) {
		sess := sessionFixture(t)
		_, err := sess.Assemble(AssembleOptions{PublishImmediately: true, Now: now})
		assert.ErrorIs(t, err, ErrNothingToSubmit)
	})

	t.Run("no selection", func(t *testing.T) {
		sess := sessionFixture(t)
		sess.Draft.Text = "hello"
		_, err := sess.Assemble(AssembleOptions{PublishImmediately: true, Now: now})
		assert.ErrorIs(t, err, ErrNoAccountsSelected)
	})

	t.Run("scheduled mode needs a time", func(t *testing.T) {
		sess := sessionFixture(t, video("v", 30))
		sess.Draft.Text = "hello"
		require.True(t, sess.Selector.Toggle(1, "page"))
		_, err := sess.Assemble(AssembleOptions{Now: now})
		assert.ErrorIs(t, err, ErrScheduleMissing)
	})

	t.Run("scheduled time must be future", func(t *testing.T) {
		sess := sessionFixture(t, video("v", 30))
		sess.Draft.Text = "hello"
		require.True(t, sess.Selector.Toggle(1, "page"))
		_, err := sess.Assemble(AssembleOptions{ScheduledAt: now.Add(-time.Hour), Now: now})
		assert.ErrorIs(t, err, ErrScheduleNotFuture)
	})
}

func TestAssembleResolvesAIAndManualContent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := sessionFixture(t, image("img", 1080, 1350))
	sess.Draft = ManualDraft{Text: "manual body", Title: "manual title"}
	sess.Settings = GenerationSettings{BrandName: "Acme", CallToAction: "shop now", PostingPurpose: "launch"}

	// AI content only for facebook-page; instagram-feed falls back to the draft
	sess.Content.Apply(map[string]Content{"facebook-page": TextContent("ai copy")})
	require.True(t, sess.Selector.Toggle(1, "page"))
	require.True(t, sess.Selector.Toggle(2, "feed"))

	req, err := sess.Assemble(AssembleOptions{PublishImmediately: true, Now: now})
	require.NoError(t, err)

	assert.Equal(t, "manual body", req.Prompt)
	assert.Equal(t, "Acme", req.BrandName)
	assert.Equal(t, "launch", req.PostingPurpose)
	assert.True(t, req.PublishImmediately)
	assert.Equal(t, now, req.ScheduledAt)

	assert.Equal(t, "ai copy", req.PreviewContent["facebook-page"].Text)
	assert.Equal(t, "manual body", req.PreviewContent["instagram-feed"].Text)

	require.Len(t, req.PlatformData, 2)
	assert.Equal(t, PlatformData{PlatformType: "facebook-page", SocialAccountID: 1, CallToAction: "shop now"}, req.PlatformData[0])
	assert.Equal(t, PlatformData{PlatformType: "instagram-feed", SocialAccountID: 2, CallToAction: "shop now"}, req.PlatformData[1])

	// media attached verbatim
	require.Len(t, req.Media, 1)
	assert.Equal(t, "img", req.Media[0].ID)

	assert.Equal(t, []string{"facebook-page"}, sess.ContentKeysInUse())
}

func TestAssembleScheduled(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)

	sess := sessionFixture(t, video("v", 30))
	sess.Draft.Text = "hello"
	require.True(t, sess.Selector.Toggle(3, "video"))

	req, err := sess.Assemble(AssembleOptions{ScheduledAt: future, Now: now})
	require.NoError(t, err)
	assert.False(t, req.PublishImmediately)
	assert.Equal(t, future, req.ScheduledAt)

	// youtube resolves to the video shape off the draft
	content := req.PreviewContent["youtube"]
	assert.Equal(t, ContentKindVideo, content.Kind)
	assert.Equal(t, "hello", content.Description)
}

func TestAssembleIsAPureRead(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := sessionFixture(t, video("v", 30))
	sess.Draft.Text = "hello"
	require.True(t, sess.Selector.Toggle(3, "video"))

	before, err := sess.MarshalJSON()
	require.NoError(t, err)
	_, err = sess.Assemble(AssembleOptions{PublishImmediately: true, Now: now})
	require.NoError(t, err)
	after, err := sess.MarshalJSON()
	require.NoError(t, err)

	assert.JSONEq(t, string(before), string(after))
}
