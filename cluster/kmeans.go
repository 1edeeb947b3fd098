package cluster

import (
	"fmt"
	"math"
	"math/rand"
)

// kmeansConfig controls one partitioning run.
type kmeansConfig struct {
	k       int
	nInit   int   // independent restarts; best inertia wins
	maxIter int   // Lloyd iterations per restart
	seed    int64 // base seed; restart i uses seed+i
}

// kmeansResult is the best partition found across restarts.
type kmeansResult struct {
	labels  []int
	inertia float64
}

// runKMeans partitions X into k clusters with k-means++ seeding and Lloyd
// iterations. Deterministic for a fixed seed.
func runKMeans(X [][]float64, cfg kmeansConfig) (*kmeansResult, error) {
	n := len(X)
	if n == 0 {
		return nil, fmt.Errorf("kmeans: empty input")
	}
	if cfg.k < 2 || cfg.k > n {
		return nil, fmt.Errorf("kmeans: k=%d out of range for %d samples", cfg.k, n)
	}
	if cfg.nInit <= 0 {
		cfg.nInit = 10
	}
	if cfg.maxIter <= 0 {
		cfg.maxIter = 100
	}

	best := &kmeansResult{inertia: math.Inf(1)}
	for attempt := 0; attempt < cfg.nInit; attempt++ {
		rng := rand.New(rand.NewSource(cfg.seed + int64(attempt)))
		labels, inertia := lloyd(X, cfg.k, cfg.maxIter, rng)
		if inertia < best.inertia {
			best = &kmeansResult{labels: labels, inertia: inertia}
		}
	}
	return best, nil
}

// lloyd runs one restart: k-means++ init then assignment/update sweeps
// until assignments stabilize.
func lloyd(X [][]float64, k, maxIter int, rng *rand.Rand) ([]int, float64) {
	n := len(X)
	dim := len(X[0])
	centroids := plusPlusInit(X, k, rng)
	labels := make([]int, n)

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, x := range X {
			bestLabel, bestDist := 0, math.Inf(1)
			for c, cent := range centroids {
				if d := sqDist(x, cent); d < bestDist {
					bestDist = d
					bestLabel = c
				}
			}
			if labels[i] != bestLabel {
				labels[i] = bestLabel
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		counts := make([]int, k)
		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, x := range X {
			counts[labels[i]]++
			for j, v := range x {
				next[labels[i]][j] += v
			}
		}
		for c := range next {
			if counts[c] == 0 {
				// Re-seed an empty cluster with the point farthest from
				// its current centroid.
				next[c] = append([]float64(nil), X[farthestPoint(X, centroids, labels)]...)
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(counts[c])
			}
		}
		centroids = next
	}

	var inertia float64
	for i, x := range X {
		inertia += sqDist(x, centroids[labels[i]])
	}
	return labels, inertia
}

// plusPlusInit picks initial centroids with k-means++ weighting.
func plusPlusInit(X [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(X)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), X[rng.Intn(n)]...))

	dists := make([]float64, n)
	for len(centroids) < k {
		var total float64
		for i, x := range X {
			d := math.Inf(1)
			for _, c := range centroids {
				if sd := sqDist(x, c); sd < d {
					d = sd
				}
			}
			dists[i] = d
			total += d
		}
		if total == 0 {
			// All remaining points coincide with a centroid; fall back to
			// uniform picks.
			centroids = append(centroids, append([]float64(nil), X[rng.Intn(n)]...))
			continue
		}
		target := rng.Float64() * total
		var cum float64
		pick := n - 1
		for i, d := range dists {
			cum += d
			if cum >= target {
				pick = i
				break
			}
		}
		centroids = append(centroids, append([]float64(nil), X[pick]...))
	}
	return centroids
}

// farthestPoint returns the index of the sample farthest from its
// assigned centroid.
func farthestPoint(X [][]float64, centroids [][]float64, labels []int) int {
	best, bestDist := 0, -1.0
	for i, x := range X {
		if d := sqDist(x, centroids[labels[i]]); d > bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
