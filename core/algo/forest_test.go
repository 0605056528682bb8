package algo

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepData builds rows where the target is 1 below x=10 and 9 above it.
func stepData() ([][]float64, []float64) {
	var x [][]float64
	var y []float64
	for i := range 20 {
		x = append(x, []float64{float64(i), float64(i % 3)})
		if i < 10 {
			y = append(y, 1)
		} else {
			y = append(y, 9)
		}
	}
	return x, y
}

func TestFitTreeLearnsStep(t *testing.T) {
	x, y := stepData()
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	tree := fitTree(x, y, idx, DefaultForestConfig(), rand.New(rand.NewPCG(1, 1)))

	assert.Equal(t, 1.0, tree.predict([]float64{2, 0}))
	assert.Equal(t, 9.0, tree.predict([]float64{15, 1}))
	assert.Equal(t, 1, tree.depth(), "a clean step needs exactly one split")
}

func TestFitTreeRespectsLimits(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	var x [][]float64
	var y []float64
	for range 64 {
		x = append(x, []float64{rng.Float64(), rng.Float64()})
		y = append(y, rng.Float64()*20)
	}
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}

	cfg := DefaultForestConfig()
	cfg.MaxDepth = 3
	tree := fitTree(x, y, idx, cfg, rand.New(rand.NewPCG(1, 1)))
	assert.LessOrEqual(t, tree.depth(), 3)

	cfg = DefaultForestConfig()
	cfg.MinSamplesLeaf = 64
	stump := fitTree(x, y, idx, cfg, rand.New(rand.NewPCG(1, 1)))
	assert.Len(t, stump.nodes, 1, "min leaf equal to n forbids any split")
}

func TestFitTreeConstantTarget(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{4, 4, 4}
	tree := fitTree(x, y, []int{0, 1, 2}, DefaultForestConfig(), rand.New(rand.NewPCG(1, 1)))
	assert.Len(t, tree.nodes, 1)
	assert.Equal(t, 4.0, tree.predict([]float64{100}))
}

func TestFitForestDeterministic(t *testing.T) {
	x, y := stepData()
	ctx := context.Background()

	seq := DefaultForestConfig()
	a, err := FitForest(ctx, x, y, seq)
	require.NoError(t, err)

	par := DefaultForestConfig()
	par.Workers = 4
	b, err := FitForest(ctx, x, y, par)
	require.NoError(t, err)

	assert.Equal(t, DefaultTrees, a.Size())
	assert.Equal(t, 2, a.Features())
	for _, row := range [][]float64{{0, 0}, {9, 1}, {10, 2}, {19, 0}, {4.5, 1}} {
		pa, err := a.Predict(row)
		require.NoError(t, err)
		pb, err := b.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, pa, pb, "worker count must not change predictions")
		assert.GreaterOrEqual(t, pa, 1.0)
		assert.LessOrEqual(t, pa, 9.0)
	}

	low, _ := a.Predict([]float64{0, 0})
	high, _ := a.Predict([]float64{19, 0})
	assert.Less(t, low, high)
}

func TestFitForestSeedMatters(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3))
	var x [][]float64
	var y []float64
	for range 40 {
		x = append(x, []float64{rng.Float64() * 100})
		y = append(y, rng.Float64()*20)
	}

	cfg := DefaultForestConfig()
	cfg.Trees = 10
	a, err := FitForest(context.Background(), x, y, cfg)
	require.NoError(t, err)
	cfg.Seed = 43
	b, err := FitForest(context.Background(), x, y, cfg)
	require.NoError(t, err)

	pa, _ := a.Predict([]float64{50})
	pb, _ := b.Predict([]float64{50})
	assert.NotEqual(t, pa, pb)
}

func TestFitForestErrors(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultForestConfig()

	_, err := FitForest(ctx, nil, nil, cfg)
	assert.ErrorIs(t, err, ErrNoSamples)

	_, err = FitForest(ctx, [][]float64{{1}, {2}}, []float64{1}, cfg)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = FitForest(ctx, [][]float64{{1, 2}, {2}}, []float64{1, 2}, cfg)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	f, err := FitForest(ctx, [][]float64{{1, 2}, {2, 3}}, []float64{1, 2}, cfg)
	require.NoError(t, err)
	_, err = f.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = FitForest(cancelled, [][]float64{{1}, {2}}, []float64{1, 2}, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRankAscending(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected []int
	}{
		{"empty", nil, []int{}},
		{"sorted", []float64{1, 2, 3}, []int{0, 1, 2}},
		{"reversed", []float64{3, 2, 1}, []int{2, 1, 0}},
		{"ties keep input order", []float64{5, 2, 5, 2}, []int{1, 3, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RankAscending(tt.values))
		})
	}
}
