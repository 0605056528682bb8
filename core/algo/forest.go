package algo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// Forest defaults.
const (
	DefaultTrees = 100
	DefaultSeed  = 42
)

var (
	// ErrNoSamples is returned when a forest is fit on zero rows.
	ErrNoSamples = errors.New("no training samples")

	// ErrShapeMismatch is returned when rows and targets disagree in length or width.
	ErrShapeMismatch = errors.New("inconsistent training data shape")
)

// ForestConfig controls how a Forest is grown.
type ForestConfig struct {
	Trees          int    // number of bagged trees
	Seed           uint64 // base seed; tree i draws from PCG(Seed, i+1)
	MaxDepth       int    // 0 means unlimited
	MinSamplesLeaf int    // minimum rows per leaf
	MaxFeatures    int    // features tried per split; 0 means all
	Workers        int    // trees grown concurrently; <= 1 is sequential
}

// DefaultForestConfig returns 100 fully grown trees seeded with 42.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:          DefaultTrees,
		Seed:           DefaultSeed,
		MinSamplesLeaf: 1,
		Workers:        1,
	}
}

// Forest is a bagged ensemble of regression trees. A fitted Forest is read-only
// and safe for concurrent Predict calls.
type Forest struct {
	trees    []regressionTree
	features int
}

// FitForest grows cfg.Trees trees, each on its own bootstrap draw of the rows.
// The result depends only on the data and cfg, never on cfg.Workers.
func FitForest(ctx context.Context, x [][]float64, y []float64, cfg ForestConfig) (*Forest, error) {
	if len(x) == 0 {
		return nil, ErrNoSamples
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d targets", ErrShapeMismatch, len(x), len(y))
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), width)
		}
	}
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultTrees
	}

	f := &Forest{trees: make([]regressionTree, cfg.Trees), features: width}
	growOne := func(t int) {
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(t)+1))
		idx := make([]int, len(x))
		for i := range idx {
			idx[i] = rng.IntN(len(x))
		}
		f.trees[t] = fitTree(x, y, idx, cfg, rng)
	}

	if cfg.Workers <= 1 {
		for t := range cfg.Trees {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			growOne(t)
		}
		return f, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for t := range cfg.Trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			growOne(t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

// Predict averages the tree outputs for one feature row.
func (f *Forest) Predict(x []float64) (float64, error) {
	if len(x) != f.features {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrShapeMismatch, len(x), f.features)
	}
	var sum float64
	for i := range f.trees {
		sum += f.trees[i].predict(x)
	}
	return sum / float64(len(f.trees)), nil
}

// Size returns the number of trees.
func (f *Forest) Size() int {
	return len(f.trees)
}

// Features returns the row width the forest was trained on.
func (f *Forest) Features() int {
	return f.features
}
