package composer

// GateDecision is the outcome of a selection attempt routed through the
// confirmation gate.
type GateDecision string

const (
	// DecisionApplied means the toggle took effect immediately.
	DecisionApplied GateDecision = "applied"
	// DecisionPending means the attempt is held until the operator confirms
	// falling back to the manual draft for a variant without AI content.
	DecisionPending GateDecision = "pending_confirmation"
	// DecisionIgnored means the pair was not selectable; nothing changed.
	DecisionIgnored GateDecision = "ignored"
)

// SelectionAttempt is a held selection waiting on operator confirmation.
type SelectionAttempt struct {
	AccountID  int64  `json:"account_id"`
	PostTypeID string `json:"post_type_id"`
	VariantKey string `json:"variant_key"`
}

// ConfirmationGate intercepts selection attempts for variants that have no AI
// content while AI content exists for others, so the fallback to the shared
// manual draft is always an explicit operator decision. The rule applies to
// every entry point that grows the selection, manual toggles and select-all
// alike. One attempt may be pending at a time.
type ConfirmationGate struct {
	pending *SelectionAttempt
}

func NewConfirmationGate() *ConfirmationGate {
	return &ConfirmationGate{}
}

// Request routes one selection attempt. Deselection always applies
// immediately; an unselectable pair is ignored; selecting a variant with no
// content entry while the store holds content for other variants parks the
// attempt as pending instead of applying it.
func (g *ConfirmationGate) Request(sel *VariantSelector, store *ContentStore, accountID int64, postTypeID string) GateDecision {
	if sel.IsSelected(accountID, postTypeID) {
		sel.Toggle(accountID, postTypeID)
		return DecisionApplied
	}
	acc, ok := sel.AccountByID(accountID)
	if !ok || !sel.IsSelectable(acc, postTypeID) {
		return DecisionIgnored
	}
	key := VariantKey(acc.PlatformID, postTypeID)
	if !store.IsEmpty() && !store.Has(key) {
		g.pending = &SelectionAttempt{AccountID: accountID, PostTypeID: postTypeID, VariantKey: key}
		return DecisionPending
	}
	sel.Toggle(accountID, postTypeID)
	return DecisionApplied
}

// Resolve finishes the pending attempt. Accepting applies the toggle;
// declining leaves the selection untouched. Either way the gate clears.
// Returns whether the selection was applied.
func (g *ConfirmationGate) Resolve(sel *VariantSelector, accept bool) bool {
	attempt := g.pending
	g.pending = nil
	if attempt == nil || !accept {
		return false
	}
	return sel.Toggle(attempt.AccountID, attempt.PostTypeID)
}

// Pending returns the held attempt, or nil.
func (g *ConfirmationGate) Pending() *SelectionAttempt {
	if g.pending == nil {
		return nil
	}
	cp := *g.pending
	return &cp
}

func (g *ConfirmationGate) Clear() {
	g.pending = nil
}

func (g *ConfirmationGate) restore(pending *SelectionAttempt) {
	if pending == nil {
		g.pending = nil
		return
	}
	cp := *pending
	g.pending = &cp
}
