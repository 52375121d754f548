package roster

import "sync"

// StatusUpdate describes one merge into an account's mutable state.
// LastResult always overwrites (empty clears the previous message).
// A nil Profile leaves the stored profile untouched; a profile once set is
// only ever replaced by a fresher one, never cleared.
type StatusUpdate struct {
	ID         string
	Status     Status
	LastResult string
	Profile    *Profile
}

// Registry is the ordered, in-memory collection of tracked accounts. All
// status mutation goes through UpdateStatus/UpdateStatusMany so that the
// validated latch and profile-retention rules hold everywhere.
type Registry struct {
	mu       sync.RWMutex
	accounts []Account
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Append adds an account to the end of the roster.
func (r *Registry) Append(acc Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = append(r.accounts, acc)
}

// Remove deletes the account with the given id. Returns false if no such
// account exists.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, acc := range r.accounts {
		if acc.ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a copy of the account with the given id.
func (r *Registry) Get(id string) (Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acc := range r.accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return Account{}, false
}

// FindByNumber returns a copy of the account with the given account number.
func (r *Registry) FindByNumber(accountNumber string) (Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acc := range r.accounts {
		if acc.AccountNumber == accountNumber {
			return acc, true
		}
	}
	return Account{}, false
}

// List returns a copy of the roster in insertion order.
func (r *Registry) List() []Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Account, len(r.accounts))
	copy(out, r.accounts)
	return out
}

// Len returns the number of live accounts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

// UpdateStatus merges a single status update. Updating an id that is no
// longer present is a no-op, not an error: a delete may race an in-flight
// network call and the late write must land nowhere.
func (r *Registry) UpdateStatus(id string, status Status, lastResult string, profile *Profile) {
	r.UpdateStatusMany([]StatusUpdate{{ID: id, Status: status, LastResult: lastResult, Profile: profile}})
}

// UpdateStatusMany merges a batch of status updates in one pass.
func (r *Registry) UpdateStatusMany(updates []StatusUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.accounts {
		for _, u := range updates {
			if u.ID != r.accounts[i].ID {
				continue
			}
			acc := &r.accounts[i]
			resolved := acc.Profile
			if u.Profile != nil {
				resolved = u.Profile
			}
			acc.Status = u.Status
			acc.LastResult = u.LastResult
			acc.Profile = resolved
			// Validated latches on the first successful lookup and never resets.
			acc.Validated = acc.Validated || (u.Status == StatusIdle && resolved != nil)
			break
		}
	}
}
