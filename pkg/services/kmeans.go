package services

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// kMeans partitions a single metric column into k clusters and returns the
// raw cluster id (0..k-1) for each row. The result is deterministic for a
// given seed. Fitting fails when the metric has fewer than k distinct values,
// since a meaningful k-way partition does not exist.
func kMeans(values []float64, k int, seed int64) ([]int, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(values) < k {
		return nil, fmt.Errorf("need at least %d rows to fit %d clusters, got %d", k, k, len(values))
	}

	distinct := distinctValues(values)
	if len(distinct) < k {
		return nil, fmt.Errorf("metric has %d distinct values, cannot fit %d clusters", len(distinct), k)
	}

	rng := rand.New(rand.NewSource(seed))

	// Initial centroids: k distinct values chosen at random. Starting from
	// distinct values guarantees no two centroids coincide.
	rng.Shuffle(len(distinct), func(i, j int) {
		distinct[i], distinct[j] = distinct[j], distinct[i]
	})
	centroids := make([]float64, k)
	copy(centroids, distinct[:k])

	assignments := make([]int, len(values))
	const maxIterations = 100
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, v := range values {
			best := nearestCentroid(v, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([]float64, k)
		counts := make([]int, k)
		for i, v := range values {
			sums[assignments[i]] += v
			counts[assignments[i]]++
		}
		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				centroids[c] = sums[c] / float64(counts[c])
			}
			// An emptied cluster keeps its old centroid; it can be
			// repopulated on a later iteration.
		}
	}
	return assignments, nil
}

func nearestCentroid(v float64, centroids []float64) int {
	best := 0
	bestDist := math.Abs(v - centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := math.Abs(v - centroids[c]); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func distinctValues(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	distinct := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if len(distinct) == 0 || v != distinct[len(distinct)-1] {
			distinct = append(distinct, v)
		}
	}
	return distinct
}
