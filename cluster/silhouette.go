package cluster

import (
	"fmt"
	"math"
)

// silhouetteScore computes the mean silhouette coefficient of a labeled
// sample set: for each sample, (b-a)/max(a,b) where a is the mean
// distance to its own cluster and b the smallest mean distance to any
// other cluster. Samples alone in their cluster score 0.
//
// Errors when the labeling has fewer than two distinct clusters, which
// the engine treats as a degenerate candidate.
func silhouetteScore(X [][]float64, labels []int) (float64, error) {
	n := len(X)
	if n != len(labels) {
		return 0, fmt.Errorf("silhouette: %d samples but %d labels", n, len(labels))
	}

	members := make(map[int][]int)
	for i, l := range labels {
		members[l] = append(members[l], i)
	}
	if len(members) < 2 {
		return 0, fmt.Errorf("silhouette: need at least 2 clusters, got %d", len(members))
	}

	// Full pairwise distances: corpora here are small (hundreds to a few
	// thousand reviews), so O(n^2) is fine.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := math.Sqrt(sqDist(X[i], X[j]))
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	var total float64
	for i := 0; i < n; i++ {
		own := members[labels[i]]
		if len(own) == 1 {
			continue // s(i) = 0
		}

		var a float64
		for _, j := range own {
			if j != i {
				a += dist[i][j]
			}
		}
		a /= float64(len(own) - 1)

		b := math.Inf(1)
		for label, other := range members {
			if label == labels[i] {
				continue
			}
			var sum float64
			for _, j := range other {
				sum += dist[i][j]
			}
			if mean := sum / float64(len(other)); mean < b {
				b = mean
			}
		}

		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n), nil
}
