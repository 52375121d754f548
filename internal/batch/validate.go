package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ggyhrr/gift-code/internal/roster"
)

// ValidateAccounts re-runs the profile lookup for the given accounts, one at
// a time in input order with the configured delay in between. Accounts
// deleted while the batch is running are skipped without a network call, and
// a deletion that races an in-flight lookup suppresses that lookup's status
// write. Progress counters only count still-live accounts. The cancel set is
// cleared when the batch finishes, however it finishes.
func (s *Service) ValidateAccounts(ctx context.Context, accounts []roster.Account) error {
	if !s.runMu.TryLock() {
		return ErrRoundActive
	}
	defer s.runMu.Unlock()

	slog.Info("Starting validation batch", "count", len(accounts))

	// Stale cancellation ids must not leak into the next batch.
	defer s.cancelled.Clear()
	defer s.persist()

	processed := 0
	for i, acc := range accounts {
		if s.cancelled.Has(acc.ID) {
			slog.Debug("Skipping deleted account", "account", acc.AccountNumber)
			continue
		}

		processed++
		liveTotal := 0
		for _, a := range accounts {
			if !s.cancelled.Has(a.ID) {
				liveTotal++
			}
		}

		s.registry.UpdateStatus(acc.ID, roster.StatusValidating,
			fmt.Sprintf("%s (%d/%d)", msgQuerying, processed, liveTotal), nil)

		profile, err := s.profiles.GetPlayer(ctx, acc.AccountNumber)
		if err != nil {
			if !s.cancelled.Has(acc.ID) {
				s.registry.UpdateStatus(acc.ID, roster.StatusError, LookupFailureMessage(err, msgValidationFailed), nil)
			}
			slog.Warn("Validation lookup failed", "account", acc.AccountNumber, "error", err)
		} else if !s.cancelled.Has(acc.ID) {
			// Re-checked after the call: a delete that raced the lookup must
			// not resurrect the account's status cell.
			s.registry.UpdateStatus(acc.ID, roster.StatusIdle, "", profile)
		}

		if i < len(accounts)-1 {
			hasRemaining := false
			for _, a := range accounts[i+1:] {
				if !s.cancelled.Has(a.ID) {
					hasRemaining = true
					break
				}
			}
			if !hasRemaining {
				break
			}
			if !s.wait(ctx) {
				return ctx.Err()
			}
		}
	}

	slog.Info("Validation batch finished", "processed", processed)
	return nil
}
