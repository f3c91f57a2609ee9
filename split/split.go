/*
Package split implements the search for the impurity-optimal binary cut
of a single numeric feature against a binary target.

The impurity criterion is Gini-based: for a set S with a fraction p1 of
positive and p0 of negative labels, H(S) = 1 - p1^2 - p0^2, and the gain
of splitting a set of N samples at a threshold t into L = {x < t} and
R = {x >= t} is

	Q(t) = -|L|/N * H(L) - |R|/N * H(R)

so that maximizing the gain minimizes the weighted post-split impurity.
*/
package split

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

/*
ErrConstantFeature is the error returned by FindBest when the feature
vector holds fewer than two distinct values and therefore admits no
threshold splitting it into two non-empty parts. Callers searching over
several features are expected to skip the feature rather than fail.
*/
var ErrConstantFeature = fmt.Errorf("feature is constant: no viable threshold")

/*
Result holds the outcome of a threshold search over one feature: every
candidate threshold in ascending order, the gain each one achieves, and
the best threshold with its gain.

Candidate thresholds are the arithmetic means of adjacent distinct
feature values, so every threshold lies strictly between two observed
values and both sides of any candidate split are non-empty.
*/
type Result struct {
	Thresholds []float64
	Gains      []float64
	Threshold  float64
	Gain       float64
}

/*
FindBest takes a vector of feature values and a matching vector of
binary (0/1) labels and returns the Result of evaluating every candidate
threshold, or an error if the vectors differ in length or the feature is
constant.

The gains for all thresholds are computed in a single pass over the
sorted samples: a cumulative sum of the sorted labels yields the
positive count left of every boundary, sampled at the last occurrence of
each distinct value. When several thresholds tie on gain the smallest
one is selected.
*/
func FindBest(values []float64, labels []int) (*Result, error) {
	if len(values) != len(labels) {
		return nil, fmt.Errorf("finding best split: %d feature values for %d labels", len(values), len(labels))
	}
	n := len(values)
	if n < 2 {
		return nil, ErrConstantFeature
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return values[order[i]] < values[order[j]]
	})
	sorted := make([]float64, n)
	sortedLabels := make([]float64, n)
	for i, idx := range order {
		sorted[i] = values[idx]
		sortedLabels[i] = float64(labels[idx])
	}

	cum := make([]float64, n)
	floats.CumSum(cum, sortedLabels)
	totalPositives := cum[n-1]

	// Boundaries sit at the last occurrence of each distinct value,
	// except the last one, which closes no interval.
	var boundaries []int
	for i := 0; i < n-1; i++ {
		if sorted[i] != sorted[i+1] {
			boundaries = append(boundaries, i)
		}
	}
	if len(boundaries) == 0 {
		return nil, ErrConstantFeature
	}

	thresholds := make([]float64, len(boundaries))
	gains := make([]float64, len(boundaries))
	total := float64(n)
	for k, i := range boundaries {
		thresholds[k] = (sorted[i] + sorted[i+1]) / 2

		nLeft := float64(i + 1)
		nRight := total - nLeft
		pLeft := cum[i] / nLeft
		pRight := (totalPositives - cum[i]) / nRight
		hLeft := 1 - pLeft*pLeft - (1-pLeft)*(1-pLeft)
		hRight := 1 - pRight*pRight - (1-pRight)*(1-pRight)
		gains[k] = -nLeft/total*hLeft - nRight/total*hRight
	}

	// Scanning ascending and replacing only on strictly greater gain
	// keeps the smallest threshold on ties.
	best := 0
	for k := 1; k < len(gains); k++ {
		if gains[k] > gains[best] {
			best = k
		}
	}
	return &Result{
		Thresholds: thresholds,
		Gains:      gains,
		Threshold:  thresholds[best],
		Gain:       gains[best],
	}, nil
}
