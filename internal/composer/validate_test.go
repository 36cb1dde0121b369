package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanSetup(t *testing.T) {
	_, sel := selectorWith(t, image("a", 1080, 1350))
	require.True(t, sel.Toggle(2, "feed"))

	result := ValidateMedia(sel.media, sel)
	assert.Empty(t, result)
}

func TestValidateLandscapeImageWarnsOnlyVerticalFeedAccount(t *testing.T) {
	media, sel := selectorWith(t, image("land", 1920, 1080))
	require.True(t, sel.Toggle(1, "page"))
	require.True(t, sel.Toggle(2, "feed"))

	result := ValidateMedia(media, sel)

	require.Contains(t, result, int64(2))
	found := false
	for _, v := range result[2] {
		if strings.Contains(v, "vertical format") {
			found = true
		}
	}
	assert.True(t, found, "expected vertical-feed warning for instagram, got %v", result[2])
	assert.NotContains(t, result, int64(1))
}

func TestValidateCountLimits(t *testing.T) {
	media := NewMediaSet()
	for i := 0; i < 11; i++ {
		require.NoError(t, media.Add(image(strings.Repeat("x", i+1), 1080, 1350)))
	}
	sel := NewVariantSelector(media, testAccounts())
	require.True(t, sel.Toggle(2, "feed"))

	result := ValidateMedia(media, sel)
	require.Contains(t, result, int64(2))
	assert.Contains(t, result[2][0], "at most 10 images")
}

func TestValidateImagePostOnVideoOnlyPlatform(t *testing.T) {
	media := NewMediaSet()
	require.NoError(t, media.Add(image("a", 1080, 1350)))
	acc := Account{ID: 7, PlatformID: PlatformYoutube, Connected: true}
	sel := NewVariantSelector(media, []Account{acc})

	// stale selection: video was attached, selected, then media swapped
	sel.restore(map[int64][]string{7: {"video"}})

	result := ValidateMedia(media, sel)
	require.Contains(t, result, int64(7))
	joined := strings.Join(result[7], "; ")
	assert.Contains(t, joined, "does not accept image posts")
	assert.Contains(t, joined, "requires a video")
}

func TestValidatePerItemChecks(t *testing.T) {
	media := NewMediaSet()
	long := video("long", 20*60)
	long.ByteSize = 700 * mb
	long.Extension = "avi"
	require.NoError(t, media.Add(long))
	sel := NewVariantSelector(media, testAccounts())
	require.True(t, sel.Toggle(2, "reels"))

	result := ValidateMedia(media, sel)
	require.Contains(t, result, int64(2))
	joined := strings.Join(result[2], "; ")
	assert.Contains(t, joined, "video size limit")
	assert.Contains(t, joined, "format .avi is not accepted")
	assert.Contains(t, joined, "longer than the instagram maximum")
}

func TestValidateStaleSelectionAfterVideoRemoval(t *testing.T) {
	media, sel := selectorWith(t, video("v", 30))
	require.True(t, sel.Toggle(3, "video"))

	media.Remove("v")
	result := ValidateMedia(media, sel)

	require.Contains(t, result, int64(3))
	assert.Contains(t, result[3][0], "requires a video but none is attached")
}
