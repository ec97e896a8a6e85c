package objective

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ts-objective/internal/model"
)

func TestSampleEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{name: "at previous time", t: 1, want: 10},
		{name: "at current time", t: 3, want: 30},
		{name: "midpoint", t: 2, want: 20},
		{name: "before window snapshots current", t: 0.5, want: 30},
		{name: "after window snapshots current", t: 4, want: 30},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Sample(1, 10, 3, 30, tt.t), 1e-12)
		})
	}
}

func TestSampleNoElapsedTime(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 7.0, Sample(2, 7, 2, 9, 2))
}

func TestReduceRMSE(t *testing.T) {
	t.Parallel()

	v, err := Reduce(model.AlgorithmRMSE, []float64{1, 2, 3}, []float64{1, 2, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.5774, v, 1e-4)
}

func TestReduceNashSutcliff(t *testing.T) {
	t.Parallel()

	// Σ(o-s)² = 1, ō = 2, Σ(o-ō)² = 2.
	v, err := Reduce(model.AlgorithmNashSutcliff, []float64{1, 2, 3}, []float64{1, 2, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-12)
}

func TestReduceMAEVariant(t *testing.T) {
	t.Parallel()

	v, err := Reduce(model.AlgorithmMAE, []float64{1, 2, 3, 4}, []float64{2, 0, 3, 5})
	require.NoError(t, err)
	// sqrt((1+2+0+1)/4)
	assert.InDelta(t, 1.0, v, 1e-12)

	neg, err := Reduce(model.AlgorithmMAE, []float64{-5, -3}, []float64{4, 8})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, neg, 0.0)
}

func TestReduceConstantObservedSaturates(t *testing.T) {
	t.Parallel()

	v, err := Reduce(model.AlgorithmNashSutcliff, []float64{4, 4, 4}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, math.MaxFloat64, v)

	perfect, err := Reduce(model.AlgorithmNashSutcliff, []float64{4, 4}, []float64{4, 4})
	require.NoError(t, err)
	assert.Equal(t, math.MaxFloat64, perfect)
}

func TestReduceNoSamplesSaturates(t *testing.T) {
	t.Parallel()

	for _, alg := range model.Algorithms() {
		v, err := Reduce(alg, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, math.MaxFloat64, v, "algorithm %s", alg)
		assert.False(t, math.IsNaN(v))
	}
}

func TestReduceRMSEShiftInvariant(t *testing.T) {
	t.Parallel()

	obs := []float64{1, 4, 2, 8}
	sim := []float64{2, 3, 2, 6}
	base, err := Reduce(model.AlgorithmRMSE, obs, sim)
	require.NoError(t, err)

	shift := func(xs []float64, c float64) []float64 {
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = x + c
		}
		return out
	}
	shifted, err := Reduce(model.AlgorithmRMSE, shift(obs, 100), shift(sim, 100))
	require.NoError(t, err)
	assert.InDelta(t, base, shifted, 1e-9)

	nse, err := Reduce(model.AlgorithmNashSutcliff, obs, sim)
	require.NoError(t, err)
	nseShifted, err := Reduce(model.AlgorithmNashSutcliff, shift(obs, 100), shift(sim, 100))
	require.NoError(t, err)
	assert.InDelta(t, nse, nseShifted, 1e-9)
}

func TestReduceErrors(t *testing.T) {
	t.Parallel()

	_, err := Reduce(model.AlgorithmRMSE, []float64{1}, nil)
	assert.Error(t, err)
	_, err = Reduce(model.Algorithm("KGE"), nil, nil)
	assert.Error(t, err)
}
