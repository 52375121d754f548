package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ggyhrr/gift-code/internal/roster"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository_EmptyLoad(t *testing.T) {
	repo := newTestRepo(t)

	accounts, err := repo.LoadAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestRepository_SaveAndLoad(t *testing.T) {
	repo := newTestRepo(t)

	in := []roster.Account{
		{
			ID:            "id-1",
			AccountNumber: "1001",
			Status:        roster.StatusSuccess, // must not survive the round trip
			LastResult:    "gift code claimed",
			Validated:     true,
			Profile: &roster.Profile{
				FID:            1001,
				Nickname:       "alpha",
				KingdomID:      7,
				StoveLevel:     30,
				StoveLevelIcon: "https://img/30.png",
				AvatarURL:      "https://img/a.png",
				TotalRecharge:  42,
			},
		},
		{
			ID:            "id-2",
			AccountNumber: "1002",
			Status:        roster.StatusError,
		},
	}
	require.NoError(t, repo.SaveAccounts(in))

	out, err := repo.LoadAccounts()
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "id-1", out[0].ID)
	assert.Equal(t, "1001", out[0].AccountNumber)
	assert.Equal(t, roster.StatusIdle, out[0].Status, "status always loads as idle")
	assert.Empty(t, out[0].LastResult, "results are not persisted")
	assert.True(t, out[0].Validated)
	require.NotNil(t, out[0].Profile)
	assert.Equal(t, "alpha", out[0].Profile.Nickname)
	assert.Equal(t, int64(42), out[0].Profile.TotalRecharge)

	assert.Equal(t, roster.StatusIdle, out[1].Status)
	assert.False(t, out[1].Validated)
	assert.Nil(t, out[1].Profile)
}

func TestRepository_SaveReplacesPreviousRoster(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.SaveAccounts([]roster.Account{
		{ID: "id-1", AccountNumber: "1001"},
		{ID: "id-2", AccountNumber: "1002"},
	}))
	require.NoError(t, repo.SaveAccounts([]roster.Account{
		{ID: "id-2", AccountNumber: "1002"},
	}))

	out, err := repo.LoadAccounts()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "id-2", out[0].ID)
}

func TestRepository_OrderPreserved(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.SaveAccounts([]roster.Account{
		{ID: "id-3", AccountNumber: "3"},
		{ID: "id-1", AccountNumber: "1"},
		{ID: "id-2", AccountNumber: "2"},
	}))

	out, err := repo.LoadAccounts()
	require.NoError(t, err)

	var numbers []string
	for _, acc := range out {
		numbers = append(numbers, acc.AccountNumber)
	}
	assert.Equal(t, []string{"3", "1", "2"}, numbers)
}
