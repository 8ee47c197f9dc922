package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xx-fighting/tntorch/internal/dense"
)

func TestCPToTTExact(t *testing.T) {
	cp, err := RandCP(dense.Shape{3, 4, 5}, 4, 21)
	require.NoError(t, err)
	want := cp.Full()

	tt, err := CPToTT(cp)
	require.NoError(t, err)

	assert.False(t, tt.IsCP())
	assert.Equal(t, "TT", tt.Format())
	assert.Equal(t, []int{1, 4, 4, 1}, tt.RanksTT())
	assert.InDelta(t, 0, relErr(want, tt.Full()), 1e-12)

	// Pure conversion: the CP input survives unchanged.
	assert.True(t, cp.IsCP())
	assert.InDelta(t, 0, relErr(want, cp.Full()), 1e-15)
}

func TestCPToTTSingleMode(t *testing.T) {
	cp, err := RandCP(dense.Shape{5}, 3, 2)
	require.NoError(t, err)
	want := cp.Full()

	tt, err := CPToTT(cp)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, tt.RanksTT())
	assert.InDelta(t, 0, relErr(want, tt.Full()), 1e-12)
}

func TestCPToTTCarriesTuckerFactors(t *testing.T) {
	a := hilbert(6, 6, 6)
	ct, err := FromDense(a, Options{RankCP: 3, RanksTucker: []int{4}, Seed: 2})
	require.NoError(t, err)
	require.Equal(t, "CP-Tucker", ct.Format())
	want := ct.Full()

	tt, err := CPToTT(ct)
	require.NoError(t, err)
	assert.Equal(t, "TT-Tucker", tt.Format())
	assert.Equal(t, []int{4, 4, 4}, tt.RanksTucker())
	assert.InDelta(t, 0, relErr(want, tt.Full()), 1e-12)
}

func TestCPToTTRejectsTT(t *testing.T) {
	tt, err := RandTT(dense.Shape{3, 3}, []int{2}, 1)
	require.NoError(t, err)
	_, err = CPToTT(tt)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
