package multilineup

import "math/rand"

// fingerprintPrime is the fixed prime spec.md §4.9.1 uses for F4.
const fingerprintPrime = 1_000_003

// Fingerprint is the 4-tuple summary of a lineup used for cheap
// locality-sensitive clustering (spec.md §4.9.1, glossary).
type Fingerprint struct {
	F1, F2, F3, F4 int
}

// ComputeFingerprint builds the 4-tuple for one lineup row.
func ComputeFingerprint(row []int) Fingerprint {
	half := len(row) / 2
	f1, f2, f3 := 0, 0, 0
	for i, id := range row {
		if i < half {
			f1 += id
		} else {
			f2 += id
		}
		f3 ^= id
	}
	f4 := 0
	if len(row) >= 3 {
		f4 = (row[0] * row[1] * row[2]) % fingerprintPrime
	}
	return Fingerprint{F1: f1, F2: f2, F3: f3, F4: f4}
}

// bucket hashes a fingerprint into one of numBuckets clusters. Similar
// lineups (close F1/F2/F3/F4) land in the same or adjacent buckets more
// often than dissimilar ones — a lightweight locality-sensitive family
// (spec.md §4.9.1), not a cryptographic hash.
func bucket(f Fingerprint, numBuckets int) int {
	h := f.F1*31 + f.F2*37 + f.F3*41 + f.F4*43
	if h < 0 {
		h = -h
	}
	return h % numBuckets
}

// FingerprintSampler clusters a lineup pool LP by fingerprint bucket and
// draws diverse sets of N lineups from it in near-linear time (spec.md
// §4.9.1).
type FingerprintSampler struct {
	pool     [][]int
	clusters [][]int // bucket -> indices into pool
	nonEmpty []int   // bucket ids with at least one member
}

// NewFingerprintSampler builds clusters over numBuckets buckets (spec.md:
// "C is configurable, typical C ~ 8N").
func NewFingerprintSampler(lineupPool [][]int, numBuckets int) *FingerprintSampler {
	clusters := make([][]int, numBuckets)
	for i, row := range lineupPool {
		b := bucket(ComputeFingerprint(row), numBuckets)
		clusters[b] = append(clusters[b], i)
	}
	var nonEmpty []int
	for b, members := range clusters {
		if len(members) > 0 {
			nonEmpty = append(nonEmpty, b)
		}
	}
	return &FingerprintSampler{pool: lineupPool, clusters: clusters, nonEmpty: nonEmpty}
}

// SampleSets draws k sets of n diverse lineups: each set pulls from n
// distinct clusters (round-robin/permuted assignment across the K*N slots),
// drawing uniformly without replacement within a cluster. It falls back to
// uniform sampling from the pool if clustering yields fewer than n non-empty
// clusters (spec.md §4.9.1).
func (s *FingerprintSampler) SampleSets(k, n int, rng *rand.Rand) [][][]int {
	if len(s.nonEmpty) < n {
		return s.uniformFallback(k, n, rng)
	}

	// Local, mutable copies of cluster membership so "without replacement"
	// holds within a single SampleSets call.
	remaining := make([][]int, len(s.clusters))
	for b, members := range s.clusters {
		remaining[b] = append([]int(nil), members...)
	}

	sets := make([][][]int, k)
	for setIdx := 0; setIdx < k; setIdx++ {
		perm := rng.Perm(len(s.nonEmpty))
		lineup := make([][]int, 0, n)
		for i := 0; i < n; i++ {
			b := s.nonEmpty[perm[i%len(perm)]]
			members := remaining[b]
			if len(members) == 0 {
				// cluster exhausted; fall back to the full pool for this slot
				lineup = append(lineup, s.pool[rng.Intn(len(s.pool))])
				continue
			}
			pick := rng.Intn(len(members))
			lineup = append(lineup, s.pool[members[pick]])
			remaining[b] = append(members[:pick], members[pick+1:]...)
		}
		sets[setIdx] = lineup
	}
	return sets
}

func (s *FingerprintSampler) uniformFallback(k, n int, rng *rand.Rand) [][][]int {
	sets := make([][][]int, k)
	for setIdx := 0; setIdx < k; setIdx++ {
		lineup := make([][]int, n)
		for i := 0; i < n; i++ {
			lineup[i] = s.pool[rng.Intn(len(s.pool))]
		}
		sets[setIdx] = lineup
	}
	return sets
}
