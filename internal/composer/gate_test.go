package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateFixture(t *testing.T) (*VariantSelector, *ContentStore, *ConfirmationGate) {
	t.Helper()
	media := NewMediaSet()
	require.NoError(t, media.Add(image("img", 1080, 1350)))
	sel := NewVariantSelector(media, testAccounts())
	return sel, NewContentStore(), NewConfirmationGate()
}

func TestGatePassesThroughWhenStoreEmpty(t *testing.T) {
	sel, store, gate := gateFixture(t)

	decision := gate.Request(sel, store, 2, "feed")
	assert.Equal(t, DecisionApplied, decision)
	assert.True(t, sel.IsSelected(2, "feed"))
	assert.Nil(t, gate.Pending())
}

func TestGatePassesThroughWhenEntryExists(t *testing.T) {
	sel, store, gate := gateFixture(t)
	store.Apply(map[string]Content{"instagram-feed": TextContent("ai copy")})

	decision := gate.Request(sel, store, 2, "feed")
	assert.Equal(t, DecisionApplied, decision)
	assert.True(t, sel.IsSelected(2, "feed"))
}

func TestGateHoldsSelectionWithoutEntry(t *testing.T) {
	sel, store, gate := gateFixture(t)
	store.Apply(map[string]Content{"facebook-page": TextContent("ai copy")})

	decision := gate.Request(sel, store, 2, "feed")
	require.Equal(t, DecisionPending, decision)

	// never Selected without explicit confirmation
	assert.False(t, sel.IsSelected(2, "feed"))
	pending := gate.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, "instagram-feed", pending.VariantKey)
	assert.Equal(t, int64(2), pending.AccountID)
}

func TestGateConfirmAccept(t *testing.T) {
	sel, store, gate := gateFixture(t)
	store.Apply(map[string]Content{"facebook-page": TextContent("ai copy")})

	require.Equal(t, DecisionPending, gate.Request(sel, store, 2, "feed"))
	assert.True(t, gate.Resolve(sel, true))
	assert.True(t, sel.IsSelected(2, "feed"))
	assert.Nil(t, gate.Pending())
}

func TestGateConfirmDecline(t *testing.T) {
	sel, store, gate := gateFixture(t)
	store.Apply(map[string]Content{"facebook-page": TextContent("ai copy")})

	require.Equal(t, DecisionPending, gate.Request(sel, store, 2, "feed"))
	assert.False(t, gate.Resolve(sel, false))
	assert.False(t, sel.IsSelected(2, "feed"))
	assert.Nil(t, gate.Pending())
}

func TestGateResolveWithoutPending(t *testing.T) {
	sel, _, gate := gateFixture(t)
	assert.False(t, gate.Resolve(sel, true))
}

func TestGateDeselectBypasses(t *testing.T) {
	sel, store, gate := gateFixture(t)
	require.Equal(t, DecisionApplied, gate.Request(sel, store, 2, "feed"))

	// a non-empty store never gates a deselection
	store.Apply(map[string]Content{"facebook-page": TextContent("ai copy")})
	decision := gate.Request(sel, store, 2, "feed")
	assert.Equal(t, DecisionApplied, decision)
	assert.False(t, sel.IsSelected(2, "feed"))
}

func TestGateIgnoresUnselectablePair(t *testing.T) {
	sel, store, gate := gateFixture(t)
	store.Apply(map[string]Content{"facebook-page": TextContent("ai copy")})

	// image-only media set: reels needs a video
	decision := gate.Request(sel, store, 2, "reels")
	assert.Equal(t, DecisionIgnored, decision)
	assert.Nil(t, gate.Pending())
	assert.True(t, sel.IsEmpty())
}
