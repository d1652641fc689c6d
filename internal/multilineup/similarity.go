package multilineup

import "gonum.org/v1/gonum/mat"

// Method names a lineup-similarity measure (spec.md §4.8).
type Method string

const (
	Jaccard Method = "jaccard"
	Hamming Method = "hamming"
)

// Similarity computes sim(x, y) under the given method. Jaccard is
// |set(x) ∩ set(y)| / |set(x) ∪ set(y)|; Hamming is the fraction of
// slot-wise equal positions.
func Similarity(method Method, x, y []int) float64 {
	switch method {
	case Hamming:
		return hammingSimilarity(x, y)
	default:
		return jaccardSimilarity(x, y)
	}
}

func jaccardSimilarity(x, y []int) float64 {
	xs := toSet(x)
	inter := 0
	union := make(map[int]bool, len(xs))
	for id := range xs {
		union[id] = true
	}
	for _, id := range y {
		if xs[id] {
			inter++
		}
		union[id] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(inter) / float64(len(union))
}

func hammingSimilarity(x, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	matches := 0
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		if x[i] == y[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(x))
}

func toSet(ids []int) map[int]bool {
	m := make(map[int]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// PairwiseMatrix builds the N x N similarity matrix over a slice of lineups,
// returned as a *mat.Dense (spec.md §4.8's reported "pairwise_matrix"),
// mirroring the teacher's use of gonum/mat for square structural matrices in
// internal/analytics/portfolio/optimizer.go.
func PairwiseMatrix(method Method, lineups [][]int) *mat.Dense {
	n := len(lineups)
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1.0)
		for j := i + 1; j < n; j++ {
			sim := Similarity(method, lineups[i], lineups[j])
			m.Set(i, j, sim)
			m.Set(j, i, sim)
		}
	}
	return m
}

// AvgMinPairwise returns the average and minimum off-diagonal similarity in
// a pairwise matrix (spec.md §6 diversity_metrics: avg_overlap, min_overlap).
func AvgMinPairwise(m *mat.Dense) (avg, min float64) {
	r, _ := m.Dims()
	if r < 2 {
		return 0, 0
	}
	total := 0.0
	count := 0
	min = 1.0
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			v := m.At(i, j)
			total += v
			count++
			if v < min {
				min = v
			}
		}
	}
	if count == 0 {
		return 0, 0
	}
	return total / float64(count), min
}
