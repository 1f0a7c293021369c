package stubserver

import "sync"

// vault keeps the payers and card references registered through the
// recurring endpoint, keyed by merchant.
type vault struct {
	mu     sync.Mutex
	payers map[string]map[string]bool
	cards  map[string]map[string]bool
}

func newVault() *vault {
	return &vault{
		payers: make(map[string]map[string]bool),
		cards:  make(map[string]map[string]bool),
	}
}

func cardKey(payerRef, cardRef string) string {
	return payerRef + "/" + cardRef
}

// addPayer records a payer and reports false when the ref is taken
func (v *vault) addPayer(merchantID, payerRef string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return insert(v.payers, merchantID, payerRef)
}

// addCard records a card reference and reports false when it is taken
func (v *vault) addCard(merchantID, payerRef, cardRef string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return insert(v.cards, merchantID, cardKey(payerRef, cardRef))
}

// removeCard deletes a card reference and reports whether it existed
func (v *vault) removeCard(merchantID, payerRef, cardRef string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := cardKey(payerRef, cardRef)
	if !v.cards[merchantID][key] {
		return false
	}
	delete(v.cards[merchantID], key)
	return true
}

func (v *vault) hasPayer(merchantID, payerRef string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.payers[merchantID][payerRef]
}

func (v *vault) hasCard(merchantID, payerRef, cardRef string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cards[merchantID][cardKey(payerRef, cardRef)]
}

func insert(set map[string]map[string]bool, merchantID, key string) bool {
	refs, ok := set[merchantID]
	if !ok {
		refs = make(map[string]bool)
		set[merchantID] = refs
	}
	if refs[key] {
		return false
	}
	refs[key] = true
	return true
}
