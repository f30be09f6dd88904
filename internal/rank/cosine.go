package rank

import "math"

// cosineSimilarity returns the cosine similarity of two equal-length
// vectors in [-1, 1]. A zero-magnitude vector on either side yields 0:
// "no similarity" rather than a math-domain failure.
func cosineSimilarity(a, b []float32) float64 {
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2))
}
