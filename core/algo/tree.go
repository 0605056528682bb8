package algo

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// minGain is the smallest SSE reduction that justifies a split.
const minGain = 1e-12

// treeNode is a node of a regression tree stored in a flat slice.
// Leaves have feature == -1.
type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// regressionTree is a CART tree minimizing squared error.
type regressionTree struct {
	nodes []treeNode
}

func (t *regressionTree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.feature < 0 {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// depth returns the longest root-to-leaf path, counting the root as 0.
func (t *regressionTree) depth() int {
	var walk func(i, d int) int
	walk = func(i, d int) int {
		n := t.nodes[i]
		if n.feature < 0 {
			return d
		}
		return max(walk(n.left, d+1), walk(n.right, d+1))
	}
	return walk(0, 0)
}

type treeBuilder struct {
	x           [][]float64
	y           []float64
	maxDepth    int
	minLeaf     int
	maxFeatures int
	rng         *rand.Rand
	nodes       []treeNode
}

// fitTree grows a tree over the rows listed in idx. Repeated indices are allowed
// and count as separate samples.
func fitTree(x [][]float64, y []float64, idx []int, cfg ForestConfig, rng *rand.Rand) regressionTree {
	b := &treeBuilder{
		x:           x,
		y:           y,
		maxDepth:    cfg.MaxDepth,
		minLeaf:     max(cfg.MinSamplesLeaf, 1),
		maxFeatures: cfg.MaxFeatures,
		rng:         rng,
	}
	b.grow(slices.Clone(idx), 0)
	return regressionTree{nodes: b.nodes}
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	var sum, sumSq float64
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	mean := sum / n

	id := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{feature: -1, value: mean})

	if len(idx) < 2*b.minLeaf || (b.maxDepth > 0 && depth >= b.maxDepth) {
		return id
	}
	parentSSE := sumSq - sum*sum/n
	if parentSSE <= minGain {
		return id
	}

	feature, threshold, sse, ok := b.bestSplit(idx)
	if !ok || parentSSE-sse <= minGain {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return id
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id] = treeNode{feature: feature, threshold: threshold, left: l, right: r, value: mean}
	return id
}

// candidateFeatures returns the feature indices examined at one node.
func (b *treeBuilder) candidateFeatures() []int {
	nf := len(b.x[0])
	if b.maxFeatures <= 0 || b.maxFeatures >= nf {
		all := make([]int, nf)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return b.rng.Perm(nf)[:b.maxFeatures]
}

// bestSplit scans every candidate feature for the threshold with the lowest
// combined child SSE. Thresholds sit halfway between consecutive distinct values.
func (b *treeBuilder) bestSplit(idx []int) (feature int, threshold, bestSSE float64, ok bool) {
	n := len(idx)
	sorted := make([]int, n)
	prefix := make([]float64, n+1)
	prefixSq := make([]float64, n+1)

	for _, f := range b.candidateFeatures() {
		copy(sorted, idx)
		slices.SortFunc(sorted, func(a, c int) int {
			if v := cmp.Compare(b.x[a][f], b.x[c][f]); v != 0 {
				return v
			}
			return cmp.Compare(a, c)
		})
		for k, i := range sorted {
			prefix[k+1] = prefix[k] + b.y[i]
			prefixSq[k+1] = prefixSq[k] + b.y[i]*b.y[i]
		}

		total, totalSq := prefix[n], prefixSq[n]
		for k := b.minLeaf; k <= n-b.minLeaf; k++ {
			lo, hi := b.x[sorted[k-1]][f], b.x[sorted[k]][f]
			if lo == hi {
				continue
			}
			nl, nr := float64(k), float64(n-k)
			ls, lsq := prefix[k], prefixSq[k]
			rs, rsq := total-ls, totalSq-lsq
			sse := (lsq - ls*ls/nl) + (rsq - rs*rs/nr)
			if !ok || sse < bestSSE {
				t := lo + (hi-lo)/2
				if t >= hi {
					t = lo
				}
				feature, threshold, bestSSE, ok = f, t, sse, true
			}
		}
	}
	return feature, threshold, bestSSE, ok
}
