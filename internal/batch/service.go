package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ggyhrr/gift-code/internal/roster"
)

// ProfileFetcher looks up a player's public profile by account number.
type ProfileFetcher interface {
	GetPlayer(ctx context.Context, accountNumber string) (*roster.Profile, error)
}

// CodeRedeemer submits a gift code for an account number.
type CodeRedeemer interface {
	RedeemCode(ctx context.Context, accountNumber, code string) error
}

// Store persists a projection of the roster between runs.
type Store interface {
	SaveAccounts(accounts []roster.Account) error
}

// Severity classifies a user-facing notification.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// NotifyFunc surfaces a user-facing message. The service never blocks on it
// and ignores anything it does.
type NotifyFunc func(message string, severity Severity)

var (
	// ErrDuplicateAccount is returned when an account number is already tracked.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrRoundActive is returned when a validation or redemption round is
	// already running; rounds never run concurrently.
	ErrRoundActive = errors.New("another round is already running")

	// ErrNoAccounts is returned by RedeemCode on an empty roster.
	ErrNoAccounts = errors.New("no accounts added")

	// ErrNoValidatedAccounts is returned by RedeemCode when nothing is validated.
	ErrNoValidatedAccounts = errors.New("no validated accounts")
)

// Service drives all roster mutation: adding and deleting accounts, the
// sequential validation batch and the sequential redemption round. At most
// one round runs at a time; every remote call within a round is separated by
// the configured delay.
type Service struct {
	registry  *roster.Registry
	cancelled *roster.CancelSet
	profiles  ProfileFetcher
	codes     CodeRedeemer
	notify    NotifyFunc
	store     Store
	delay     time.Duration

	runMu      sync.Mutex
	processing atomic.Bool
	remaining  atomic.Int64
}

// New creates a batch service. store may be nil to disable persistence;
// notify may be nil to drop notifications.
func New(registry *roster.Registry, profiles ProfileFetcher, codes CodeRedeemer, notify NotifyFunc, store Store, delay time.Duration) *Service {
	if notify == nil {
		notify = func(string, Severity) {}
	}
	return &Service{
		registry:  registry,
		cancelled: roster.NewCancelSet(),
		profiles:  profiles,
		codes:     codes,
		notify:    notify,
		store:     store,
		delay:     delay,
	}
}

// Accounts returns a snapshot of the roster.
func (s *Service) Accounts() []roster.Account {
	return s.registry.List()
}

// Stats returns display counters for the current roster.
func (s *Service) Stats() roster.Stats {
	return roster.ComputeStats(s.registry.List())
}

// Processing reports whether a redemption round is running.
func (s *Service) Processing() bool {
	return s.processing.Load()
}

// Remaining returns how many accounts the current redemption round has left.
func (s *Service) Remaining() int {
	return int(s.remaining.Load())
}

// AddAccount registers a new account. The account is created in validating
// status and looked up once: on success it settles into idle with its
// profile attached, on failure it is removed again so a failed add leaves no
// trace. silent suppresses the duplicate and failure notifications (used
// during bulk import).
func (s *Service) AddAccount(ctx context.Context, accountNumber string, silent bool) (roster.Account, error) {
	if _, exists := s.registry.FindByNumber(accountNumber); exists {
		if !silent {
			s.notify(fmt.Sprintf("account %s already exists", accountNumber), SeverityWarning)
		}
		return roster.Account{}, ErrDuplicateAccount
	}

	acc := roster.NewAccount(accountNumber)
	acc.LastResult = msgQuerying
	s.registry.Append(acc)

	profile, err := s.profiles.GetPlayer(ctx, accountNumber)
	if err != nil {
		s.registry.Remove(acc.ID)
		msg := LookupFailureMessage(err, msgQueryFailed)
		if !silent {
			s.notify(fmt.Sprintf("failed to add account %s: %s", accountNumber, msg), SeverityError)
		}
		slog.Warn("Account add failed", "account", accountNumber, "error", err)
		return roster.Account{}, fmt.Errorf("add account %s: %w", accountNumber, err)
	}

	s.registry.UpdateStatus(acc.ID, roster.StatusIdle, "", profile)
	s.persist()

	added, _ := s.registry.Get(acc.ID)
	slog.Info("Account added", "account", accountNumber, "nickname", profile.Nickname)
	return added, nil
}

// DeleteAccount removes an account immediately, even mid-round. The id is
// recorded in the cancel set so an in-flight batch step for it never writes
// back.
func (s *Service) DeleteAccount(id string) {
	s.cancelled.Add(id)
	if s.registry.Remove(id) {
		slog.Info("Account deleted", "id", id)
		s.persist()
	}
}

// ImportAccounts adds a list of account numbers one at a time with the
// configured delay between lookups. Individual duplicate and failure alerts
// are suppressed; a single summary notification is emitted at the end.
func (s *Service) ImportAccounts(ctx context.Context, numbers []string) (added, skipped int) {
	for i, number := range numbers {
		if _, err := s.AddAccount(ctx, number, true); err != nil {
			skipped++
		} else {
			added++
		}
		if i < len(numbers)-1 {
			if !s.wait(ctx) {
				skipped += len(numbers) - i - 1
				break
			}
		}
	}
	s.notify(fmt.Sprintf("import finished: %d added, %d skipped", added, skipped), SeverityInfo)
	slog.Info("Import finished", "added", added, "skipped", skipped)
	return added, skipped
}

// persist saves the roster projection if a store is configured.
func (s *Service) persist() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveAccounts(s.registry.List()); err != nil {
		slog.Error("Failed to persist accounts", "error", err)
	}
}

// wait sleeps for the configured inter-request delay. Returns false if the
// context was cancelled first.
func (s *Service) wait(ctx context.Context) bool {
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// decrementRemaining drops the round counter by one, never below zero.
func (s *Service) decrementRemaining() {
	for {
		cur := s.remaining.Load()
		next := cur - 1
		if next < 0 {
			next = 0
		}
		if s.remaining.CompareAndSwap(cur, next) {
			return
		}
	}
}
