package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ggyhrr/gift-code/internal/century"
	"github.com/ggyhrr/gift-code/internal/roster"
)

type fakeLookup struct {
	mu    sync.Mutex
	calls []string
	fn    func(accountNumber string) (*roster.Profile, error)
}

func (f *fakeLookup) GetPlayer(_ context.Context, accountNumber string) (*roster.Profile, error) {
	f.mu.Lock()
	f.calls = append(f.calls, accountNumber)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(accountNumber)
	}
	return &roster.Profile{FID: 1, Nickname: "player-" + accountNumber}, nil
}

func (f *fakeLookup) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRedeem struct {
	mu    sync.Mutex
	calls []string
	fn    func(accountNumber, code string) error
}

func (f *fakeRedeem) RedeemCode(_ context.Context, accountNumber, code string) error {
	f.mu.Lock()
	f.calls = append(f.calls, accountNumber)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(accountNumber, code)
	}
	return nil
}

type notification struct {
	message  string
	severity Severity
}

type recorder struct {
	mu    sync.Mutex
	notes []notification
}

func (r *recorder) notify(message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, notification{message, severity})
}

func (r *recorder) all() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.notes...)
}

type countingStore struct {
	mu    sync.Mutex
	saves int
}

func (s *countingStore) SaveAccounts([]roster.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

func newTestService(lookup *fakeLookup, redeem *fakeRedeem, notes *recorder) *Service {
	var notify NotifyFunc
	if notes != nil {
		notify = notes.notify
	}
	return New(roster.NewRegistry(), lookup, redeem, notify, nil, time.Millisecond)
}

// seedValidated puts an already-validated idle account into the registry,
// as if it survived a previous session.
func seedValidated(s *Service, accountNumber string) roster.Account {
	acc := roster.NewAccount(accountNumber)
	s.registry.Append(acc)
	s.registry.UpdateStatus(acc.ID, roster.StatusIdle, "", &roster.Profile{FID: 1, Nickname: "player-" + accountNumber})
	got, _ := s.registry.Get(acc.ID)
	return got
}

func TestAddAccount_Success(t *testing.T) {
	lookup := &fakeLookup{}
	notes := &recorder{}
	s := newTestService(lookup, &fakeRedeem{}, notes)

	// Scenario: two distinct adds both settle idle and validated.
	for _, n := range []string{"1001", "1002"} {
		acc, err := s.AddAccount(context.Background(), n, false)
		require.NoError(t, err)
		assert.Equal(t, roster.StatusIdle, acc.Status)
		assert.True(t, acc.Validated)
		require.NotNil(t, acc.Profile)
		assert.Equal(t, "player-"+n, acc.Profile.Nickname)
	}

	assert.Equal(t, 2, s.registry.Len())
	assert.Empty(t, notes.all(), "successful adds are silent")
}

func TestAddAccount_Duplicate(t *testing.T) {
	lookup := &fakeLookup{}
	notes := &recorder{}
	s := newTestService(lookup, &fakeRedeem{}, notes)

	_, err := s.AddAccount(context.Background(), "1001", false)
	require.NoError(t, err)

	_, err = s.AddAccount(context.Background(), "1001", false)
	assert.ErrorIs(t, err, ErrDuplicateAccount)
	assert.Equal(t, 1, s.registry.Len())
	assert.Equal(t, 1, lookup.callCount(), "duplicate is rejected before any network call")

	all := notes.all()
	require.Len(t, all, 1)
	assert.Equal(t, SeverityWarning, all[0].severity)
}

func TestAddAccount_DuplicateSilent(t *testing.T) {
	notes := &recorder{}
	s := newTestService(&fakeLookup{}, &fakeRedeem{}, notes)

	_, err := s.AddAccount(context.Background(), "1001", true)
	require.NoError(t, err)
	_, err = s.AddAccount(context.Background(), "1001", true)
	assert.ErrorIs(t, err, ErrDuplicateAccount)

	assert.Empty(t, notes.all())
}

func TestAddAccount_NotFoundLeavesNoTrace(t *testing.T) {
	lookup := &fakeLookup{fn: func(string) (*roster.Profile, error) {
		return nil, &century.APIError{Code: 1, ErrCode: century.ErrCodeAccountNotExists, Msg: "role not exist"}
	}}
	notes := &recorder{}
	s := newTestService(lookup, &fakeRedeem{}, notes)

	_, err := s.AddAccount(context.Background(), "1001", false)
	require.Error(t, err)

	assert.Equal(t, 0, s.registry.Len(), "a failed first add leaves no trace")

	all := notes.all()
	require.Len(t, all, 1)
	assert.Equal(t, SeverityError, all[0].severity)
	assert.Contains(t, all[0].message, "account does not exist")
}

func TestAddAccount_ServiceErrorSurfacesMessage(t *testing.T) {
	lookup := &fakeLookup{fn: func(string) (*roster.Profile, error) {
		return nil, &century.APIError{Code: 1, ErrCode: 50000, Msg: "service busy"}
	}}
	notes := &recorder{}
	s := newTestService(lookup, &fakeRedeem{}, notes)

	_, err := s.AddAccount(context.Background(), "1001", false)
	require.Error(t, err)

	all := notes.all()
	require.Len(t, all, 1)
	assert.Contains(t, all[0].message, "service busy")
}

func TestAddAccount_TransportErrorIsGeneric(t *testing.T) {
	lookup := &fakeLookup{fn: func(string) (*roster.Profile, error) {
		return nil, errors.New("connection refused")
	}}
	notes := &recorder{}
	s := newTestService(lookup, &fakeRedeem{}, notes)

	_, err := s.AddAccount(context.Background(), "1001", false)
	require.Error(t, err)

	all := notes.all()
	require.Len(t, all, 1)
	assert.Contains(t, all[0].message, "player lookup failed")
}

func TestAddAccount_NeverDuplicatesNumbers(t *testing.T) {
	s := newTestService(&fakeLookup{}, &fakeRedeem{}, nil)

	for _, n := range []string{"1001", "1002", "1001", "1003", "1002", "1001"} {
		s.AddAccount(context.Background(), n, true)
	}

	seen := make(map[string]int)
	for _, acc := range s.registry.List() {
		seen[acc.AccountNumber]++
	}
	for n, count := range seen {
		assert.Equal(t, 1, count, "account %s duplicated", n)
	}
}

func TestDeleteAccount(t *testing.T) {
	s := newTestService(&fakeLookup{}, &fakeRedeem{}, nil)
	acc, err := s.AddAccount(context.Background(), "1001", true)
	require.NoError(t, err)

	s.DeleteAccount(acc.ID)

	assert.Equal(t, 0, s.registry.Len())
	assert.True(t, s.cancelled.Has(acc.ID), "deletion marks the id cancelled")
}

func TestImportAccounts(t *testing.T) {
	notes := &recorder{}
	s := newTestService(&fakeLookup{}, &fakeRedeem{}, notes)
	_, err := s.AddAccount(context.Background(), "1002", true)
	require.NoError(t, err)
	notes.mu.Lock()
	notes.notes = nil
	notes.mu.Unlock()

	added, skipped := s.ImportAccounts(context.Background(), []string{"1001", "1002", "1003"})

	assert.Equal(t, 2, added)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 3, s.registry.Len())

	// Only the summary is announced; per-item alerts stay silent.
	all := notes.all()
	require.Len(t, all, 1)
	assert.Equal(t, SeverityInfo, all[0].severity)
	assert.Contains(t, all[0].message, "2 added")
}

func TestPersistCalledAfterMutations(t *testing.T) {
	store := &countingStore{}
	s := New(roster.NewRegistry(), &fakeLookup{}, &fakeRedeem{}, nil, store, time.Millisecond)

	acc, err := s.AddAccount(context.Background(), "1001", true)
	require.NoError(t, err)
	s.DeleteAccount(acc.ID)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 2, store.saves)
}
