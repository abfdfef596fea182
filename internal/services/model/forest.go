package model

import (
	"math"
	"math/rand"
	"sort"
)

// Forest is a random forest of binary CART trees over gini impurity. The
// fixed seed makes fitting fully deterministic so repeated training runs on
// the same data produce identical artifacts.
type Forest struct {
	Trees       []Tree    `json:"trees"`
	Importances []float64 `json:"importances"`
}

// Tree stores its nodes flat so the artifact serializes to JSON without
// recursion.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode is either a split (Left/Right >= 0) or a leaf (Left == -1).
type TreeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	ProbUp    float64 `json:"p"`
}

// ForestConfig bounds the fit. MaxDepth caps tree height to keep training on
// request-sized frames cheap.
type ForestConfig struct {
	NumTrees int
	MaxDepth int
	Seed     int64
}

// DefaultForestConfig mirrors a 200-tree forest with a fixed seed.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{NumTrees: 200, MaxDepth: 10, Seed: 42}
}

// FitForest trains a forest on X (rows of feature vectors) and binary labels
// y. Each tree fits a bootstrap sample and considers sqrt(#features) random
// features per split.
func FitForest(x [][]float64, y []int, cfg ForestConfig) *Forest {
	if cfg.NumTrees <= 0 {
		cfg.NumTrees = DefaultForestConfig().NumTrees
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultForestConfig().MaxDepth
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	if len(x) == 0 {
		return &Forest{}
	}

	numFeatures := 0
	if len(x) > 0 {
		numFeatures = len(x[0])
	}
	maxFeatures := int(math.Sqrt(float64(numFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	f := &Forest{
		Trees:       make([]Tree, 0, cfg.NumTrees),
		Importances: make([]float64, numFeatures),
	}
	for t := 0; t < cfg.NumTrees; t++ {
		sample := make([]int, len(x))
		for i := range sample {
			sample[i] = rng.Intn(len(x))
		}
		b := &treeBuilder{
			x: x, y: y, rng: rng,
			maxFeatures: maxFeatures,
			maxDepth:    cfg.MaxDepth,
			total:       len(sample),
			importances: make([]float64, numFeatures),
		}
		b.build(sample, 0)
		f.Trees = append(f.Trees, Tree{Nodes: b.nodes})

		// Normalize per tree, then average across the forest.
		var sum float64
		for _, v := range b.importances {
			sum += v
		}
		if sum > 0 {
			for i, v := range b.importances {
				f.Importances[i] += v / sum / float64(cfg.NumTrees)
			}
		}
	}
	return f
}

// PredictProba returns the averaged per-tree probability of the up class for
// one feature vector.
func (f *Forest) PredictProba(row []float64) float64 {
	if len(f.Trees) == 0 {
		return 0.5
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(row)
	}
	return sum / float64(len(f.Trees))
}

func (t *Tree) predict(row []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0.5
	}
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left < 0 {
			return n.ProbUp
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type treeBuilder struct {
	x           [][]float64
	y           []int
	rng         *rand.Rand
	maxFeatures int
	maxDepth    int
	total       int
	nodes       []TreeNode
	importances []float64
}

// build grows one subtree over the given sample indices and returns the
// index of its root node.
func (b *treeBuilder) build(indices []int, depth int) int {
	prob := b.probUp(indices)
	imp := giniFromProb(prob)

	idx := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Feature: -1, Left: -1, Right: -1, ProbUp: prob})

	if depth >= b.maxDepth || len(indices) < 2 || imp == 0 {
		return idx
	}

	feature, threshold, gain, ok := b.bestSplit(indices, imp)
	if !ok || gain <= 0 {
		return idx
	}

	var left, right []int
	for _, i := range indices {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return idx
	}

	b.importances[feature] += float64(len(indices)) / float64(b.total) * gain

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[idx].Feature = feature
	b.nodes[idx].Threshold = threshold
	b.nodes[idx].Left = l
	b.nodes[idx].Right = r
	return idx
}

// bestSplit scans a random feature subset for the threshold with the largest
// weighted impurity decrease. If every sampled feature is constant on this
// sample, scanning continues into the remaining features so a usable split is
// not missed.
func (b *treeBuilder) bestSplit(indices []int, parentImp float64) (feature int, threshold, gain float64, ok bool) {
	numFeatures := len(b.x[indices[0]])
	perm := b.rng.Perm(numFeatures)

	bestGain := 0.0
	for visited, f := range perm {
		if visited >= b.maxFeatures && ok {
			break
		}
		values := make([]float64, 0, len(indices))
		for _, i := range indices {
			values = append(values, b.x[i][f])
		}
		for _, th := range splitPoints(values) {
			var nl, nr, upl, upr int
			for _, i := range indices {
				if b.x[i][f] <= th {
					nl++
					upl += b.y[i]
				} else {
					nr++
					upr += b.y[i]
				}
			}
			if nl == 0 || nr == 0 {
				continue
			}
			wl := float64(nl) / float64(len(indices))
			wr := float64(nr) / float64(len(indices))
			g := parentImp -
				wl*giniFromProb(float64(upl)/float64(nl)) -
				wr*giniFromProb(float64(upr)/float64(nr))
			if g > bestGain {
				bestGain = g
				feature = f
				threshold = th
				ok = true
			}
		}
	}
	return feature, threshold, bestGain, ok
}

// splitPoints returns midpoints between consecutive distinct sorted values.
func splitPoints(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	out := make([]float64, 0, len(sorted))
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			out = append(out, (sorted[i]+sorted[i-1])/2)
		}
	}
	return out
}

func (b *treeBuilder) probUp(indices []int) float64 {
	if len(indices) == 0 {
		return 0.5
	}
	up := 0
	for _, i := range indices {
		up += b.y[i]
	}
	return float64(up) / float64(len(indices))
}

func giniFromProb(p float64) float64 {
	return 2 * p * (1 - p)
}
