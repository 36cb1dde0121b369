package composer

import "sort"

// Account is a connected social account as reported by the accounts
// collaborator. Read-only inside the composer.
type Account struct {
	ID          int64  `json:"id"`
	PlatformID  string `json:"platform_id"`
	DisplayName string `json:"display_name"`
	Connected   bool   `json:"connected"`
}

// VariantSelector computes which (account, post type) pairs are currently
// selectable against the attached media and tracks the operator's selection.
// Invariant: an account id appears in the selection iff its post-type set is
// non-empty.
type VariantSelector struct {
	media     *MediaSet
	accounts  []Account
	selection map[int64][]string
}

func NewVariantSelector(media *MediaSet, accounts []Account) *VariantSelector {
	return &VariantSelector{
		media:     media,
		accounts:  accounts,
		selection: make(map[int64][]string),
	}
}

// SetAccounts replaces the account list, keeping the current selection as-is.
func (v *VariantSelector) SetAccounts(accounts []Account) {
	v.accounts = accounts
}

func (v *VariantSelector) Accounts() []Account {
	out := make([]Account, len(v.accounts))
	copy(out, v.accounts)
	return out
}

func (v *VariantSelector) AccountByID(id int64) (Account, bool) {
	for _, acc := range v.accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return Account{}, false
}

// IsSelectable reports whether the pair may enter the selection: the account
// must be connected and the post type's media prerequisite, if any, must be
// met by the current media set. Text-only post types are selectable as soon
// as the account is connected.
func (v *VariantSelector) IsSelectable(account Account, postTypeID string) bool {
	if !account.Connected {
		return false
	}
	d, ok := Descriptor(account.PlatformID, postTypeID)
	if !ok {
		return false
	}
	if d.RequiresVideo && !v.media.HasVideo() {
		return false
	}
	if d.RequiresImage && !v.media.HasImage() {
		return false
	}
	return true
}

// Toggle flips membership of postTypeID in the account's selection. Adding is
// subject to IsSelectable and is a silent no-op when the pair is not
// selectable; removing is always allowed so a stale pair never gets stuck.
// Returns whether the selection changed.
func (v *VariantSelector) Toggle(accountID int64, postTypeID string) bool {
	if v.IsSelected(accountID, postTypeID) {
		v.remove(accountID, postTypeID)
		return true
	}
	acc, ok := v.AccountByID(accountID)
	if !ok || !v.IsSelectable(acc, postTypeID) {
		return false
	}
	v.selection[accountID] = append(v.selection[accountID], postTypeID)
	return true
}

func (v *VariantSelector) remove(accountID int64, postTypeID string) {
	types := v.selection[accountID]
	for i, t := range types {
		if t == postTypeID {
			types = append(types[:i], types[i+1:]...)
			break
		}
	}
	if len(types) == 0 {
		delete(v.selection, accountID)
		return
	}
	v.selection[accountID] = types
}

func (v *VariantSelector) IsSelected(accountID int64, postTypeID string) bool {
	for _, t := range v.selection[accountID] {
		if t == postTypeID {
			return true
		}
	}
	return false
}

// Selected returns the post types chosen for one account.
func (v *VariantSelector) Selected(accountID int64) []string {
	out := make([]string, len(v.selection[accountID]))
	copy(out, v.selection[accountID])
	return out
}

// SelectedAccounts returns the ids of accounts with a non-empty selection,
// ascending.
func (v *VariantSelector) SelectedAccounts() []int64 {
	out := make([]int64, 0, len(v.selection))
	for id := range v.selection {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Selection returns a copy of the full selection map.
func (v *VariantSelector) Selection() map[int64][]string {
	out := make(map[int64][]string, len(v.selection))
	for id, types := range v.selection {
		cp := make([]string, len(types))
		copy(cp, types)
		out[id] = cp
	}
	return out
}

func (v *VariantSelector) IsEmpty() bool {
	return len(v.selection) == 0
}

// SelectAll assigns the maximal selectable set over all connected accounts
// and catalog descriptors. Always yields the full set regardless of what was
// selected before, so it is idempotent.
func (v *VariantSelector) SelectAll() {
	next := make(map[int64][]string)
	for _, acc := range v.accounts {
		for _, d := range DescriptorsFor(acc.PlatformID) {
			if v.IsSelectable(acc, d.PostTypeID) {
				next[acc.ID] = append(next[acc.ID], d.PostTypeID)
			}
		}
	}
	v.selection = next
}

// DeselectAll clears the selection entirely.
func (v *VariantSelector) DeselectAll() {
	v.selection = make(map[int64][]string)
}

func (v *VariantSelector) restore(selection map[int64][]string) {
	v.selection = make(map[int64][]string, len(selection))
	for id, types := range selection {
		cp := make([]string, len(types))
		copy(cp, types)
		v.selection[id] = cp
	}
}
