package batch

import (
	"context"
	"log/slog"

	"github.com/ggyhrr/gift-code/internal/roster"
)

// RedeemCode submits one gift code across every validated account, one at a
// time in roster order with the configured delay in between. Each account's
// profile is re-fetched first; redemption is never attempted on a stale
// profile. Per-account failures are converted into that account's status and
// never abort the round. The remaining counter drops exactly once per
// account and ends at zero.
func (s *Service) RedeemCode(ctx context.Context, code string) error {
	if !s.runMu.TryLock() {
		return ErrRoundActive
	}
	defer s.runMu.Unlock()

	accounts := s.registry.List()
	if len(accounts) == 0 {
		s.notify("add at least one account first", SeverityWarning)
		return ErrNoAccounts
	}

	var validated []roster.Account
	for _, acc := range accounts {
		if acc.Validated {
			validated = append(validated, acc)
		}
	}
	if len(validated) == 0 {
		s.notify("no validated accounts to redeem for", SeverityWarning)
		return ErrNoValidatedAccounts
	}

	// Reset any leftover success/error results from the previous round
	// before the first network call; validation state and profiles survive.
	var resets []roster.StatusUpdate
	for _, acc := range accounts {
		if acc.Status == roster.StatusSuccess || acc.Status == roster.StatusError {
			resets = append(resets, roster.StatusUpdate{ID: acc.ID, Status: roster.StatusIdle})
		}
	}
	if len(resets) > 0 {
		s.registry.UpdateStatusMany(resets)
	}

	slog.Info("Starting redemption round", "code", code, "accounts", len(validated))
	s.processing.Store(true)
	s.remaining.Store(int64(len(validated)))
	defer func() {
		s.processing.Store(false)
		s.remaining.Store(0)
		s.persist()
		slog.Info("Redemption round finished", "code", code)
	}()

	for i, acc := range validated {
		s.setStatus(acc.ID, roster.StatusProcessing, msgQuerying, nil)

		profile, err := s.profiles.GetPlayer(ctx, acc.AccountNumber)
		if err != nil {
			s.setStatus(acc.ID, roster.StatusError, LookupFailureMessage(err, msgValidationFailed), nil)
			s.decrementRemaining()
			slog.Warn("Profile refresh failed", "account", acc.AccountNumber, "error", err)
			if i < len(validated)-1 && !s.wait(ctx) {
				return ctx.Err()
			}
			continue
		}
		s.setStatus(acc.ID, roster.StatusProcessing, "", profile)

		if err := s.codes.RedeemCode(ctx, acc.AccountNumber, code); err != nil {
			s.setStatus(acc.ID, roster.StatusError, redeemFailureMessage(err), nil)
			slog.Warn("Redemption failed", "account", acc.AccountNumber, "error", err)
		} else {
			s.setStatus(acc.ID, roster.StatusSuccess, msgRedeemSuccess, nil)
			slog.Info("Redemption succeeded", "account", acc.AccountNumber)
		}

		s.decrementRemaining()
		if i < len(validated)-1 {
			if !s.wait(ctx) {
				return ctx.Err()
			}
		}
	}

	return nil
}

// setStatus writes a status update unless the account was deleted while the
// round was running. The registry no-ops updates for missing ids anyway;
// checking the cancel set here keeps a raced delete from being observable at
// all between the write and the next roster read.
func (s *Service) setStatus(id string, status roster.Status, lastResult string, profile *roster.Profile) {
	if s.cancelled.Has(id) {
		return
	}
	s.registry.UpdateStatus(id, status, lastResult, profile)
}
