package analysis

import (
	"errors"
	"math"
	"math/rand"

	"battery-swap-sim/internal/model"
)

const (
	kmeansMaxIterations = 50
	kmeansThreshold     = 0.001
)

// OptimizePlacement clusters demand points with k-means and returns the k
// centroids as proposed station locations, plus the mean distance from each
// point to its nearest centroid (degrees) as a coverage score. The same seed
// always yields the same placement.
func OptimizePlacement(points []model.Location, k int, seed int64) ([]model.Location, float64, error) {
	if k < 1 {
		return nil, 0, errors.New("k must be >= 1")
	}
	if len(points) < k {
		return nil, 0, errors.New("fewer demand points than requested stations")
	}

	rng := rand.New(rand.NewSource(seed))

	// Initialize from a random sample of the points.
	perm := rng.Perm(len(points))
	centroids := make([]model.Location, k)
	for i := 0; i < k; i++ {
		centroids[i] = points[perm[i]]
	}

	assign := make([]int, len(points))
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		for i, p := range points {
			assign[i] = nearest(centroids, p)
		}

		moved := 0.0
		for c := range centroids {
			var latSum, lonSum float64
			n := 0
			for i, p := range points {
				if assign[i] == c {
					latSum += p.Lat
					lonSum += p.Lon
					n++
				}
			}
			if n == 0 {
				// Empty cluster: reseed on a random point.
				centroids[c] = points[rng.Intn(len(points))]
				moved += kmeansThreshold
				continue
			}
			next := model.Location{Lat: latSum / float64(n), Lon: lonSum / float64(n)}
			moved += dist(centroids[c], next)
			centroids[c] = next
		}
		if moved < kmeansThreshold {
			break
		}
	}

	var total float64
	for _, p := range points {
		total += dist(centroids[nearest(centroids, p)], p)
	}
	return centroids, total / float64(len(points)), nil
}

func nearest(centroids []model.Location, p model.Location) int {
	best := 0
	bestD := math.MaxFloat64
	for i, c := range centroids {
		if d := dist(c, p); d < bestD {
			best = i
			bestD = d
		}
	}
	return best
}

// dist is plain Euclidean distance in degree space. At city scale the
// latitude distortion is irrelevant for clustering.
func dist(a, b model.Location) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return math.Sqrt(dLat*dLat + dLon*dLon)
}
