package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil)

	assert.Zero(t, s.Total)
	assert.Zero(t, s.ValidationRate)
	assert.Zero(t, s.SuccessRate)
}

func TestComputeStats(t *testing.T) {
	profile := &Profile{FID: 1}
	accounts := []Account{
		{ID: "a", Status: StatusSuccess, Validated: true, Profile: profile},
		{ID: "b", Status: StatusError, Validated: true, Profile: profile},
		{ID: "c", Status: StatusProcessing, Validated: true, Profile: profile},
		{ID: "d", Status: StatusIdle, Validated: true, Profile: profile},
		{ID: "e", Status: StatusValidating},
	}

	s := ComputeStats(accounts)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 4, s.Validated)
	assert.Equal(t, 1, s.Processing)
	assert.Equal(t, 1, s.Success)
	assert.Equal(t, 1, s.Error)
	assert.Equal(t, 1, s.Remaining)
	assert.InDelta(t, 80.0, s.ValidationRate, 0.001)
	assert.InDelta(t, 25.0, s.SuccessRate, 0.001)
}
