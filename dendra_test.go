package dendra

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mbruna/dendra/dataset"
	"github.com/mbruna/dendra/dataset/csv"
	"github.com/mbruna/dendra/feature"
)

func realTable(t *testing.T, values [][]float64) *dataset.Table {
	t.Helper()
	features := make([]feature.Feature, len(values[0]))
	for i := range features {
		features[i] = feature.NewRealFeature(fmt.Sprintf("x%d", i))
	}
	rows := make([][]interface{}, len(values))
	for i, row := range values {
		rows[i] = make([]interface{}, len(row))
		for j, v := range row {
			rows[i][j] = v
		}
	}
	tbl, err := dataset.FromRows(features, rows)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	return tbl
}

func TestNewRejectsUnknownFeatureKind(t *testing.T) {
	_, err := NewFromKinds([]string{feature.Real, "ordinal"})
	if err == nil {
		t.Fatal("expected an error for an unknown feature kind")
	}
	if _, ok := err.(feature.ConfigurationError); !ok {
		t.Errorf("expected a feature.ConfigurationError, got %T: %v", err, err)
	}
}

func TestNewRejectsEmptyFeatureSet(t *testing.T) {
	_, err := New(nil)
	if err == nil {
		t.Fatal("expected an error for an empty feature set")
	}
	if _, ok := err.(feature.ConfigurationError); !ok {
		t.Errorf("expected a feature.ConfigurationError, got %T: %v", err, err)
	}
}

func TestFitRejectsShapeMismatch(t *testing.T) {
	c, err := NewFromKinds([]string{feature.Real})
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	tbl := realTable(t, [][]float64{{1}, {2}, {3}})
	_, err = c.Fit(context.Background(), tbl, []int{0, 1})
	if err == nil {
		t.Fatal("expected an error on mismatched table and label lengths")
	}
	if _, ok := err.(ShapeError); !ok {
		t.Errorf("expected a ShapeError, got %T: %v", err, err)
	}
}

// Split search indexes table columns by the classifier's feature
// position, so a table whose columns are ordered or typed differently
// must be rejected up front.
func TestFitRejectsMisalignedTable(t *testing.T) {
	ctx := context.Background()
	a := feature.NewRealFeature("a")
	b := feature.NewCategoricalFeature("b", nil)
	c, err := New([]feature.Feature{a, b})
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	swapped, err := dataset.FromRows([]feature.Feature{b, a}, [][]interface{}{
		{"red", 1.0},
		{"blue", 2.0},
	})
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	if _, err = c.Fit(ctx, swapped, []int{0, 1}); err == nil {
		t.Error("expected an error fitting a table with swapped columns")
	}
	narrow, err := dataset.FromRows([]feature.Feature{a}, [][]interface{}{{1.0}, {2.0}})
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	if _, err = c.Fit(ctx, narrow, []int{0, 1}); err == nil {
		t.Error("expected an error fitting a table missing a column")
	}
	renamed, err := dataset.FromRows(
		[]feature.Feature{a, feature.NewCategoricalFeature("z", nil)},
		[][]interface{}{{1.0, "red"}, {2.0, "blue"}},
	)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	if _, err = c.Fit(ctx, renamed, []int{0, 1}); err == nil {
		t.Error("expected an error fitting a table with a renamed column")
	}
}

func TestFitOverShuffledHeaderCSV(t *testing.T) {
	ctx := context.Background()
	a := feature.NewRealFeature("a")
	b := feature.NewCategoricalFeature("b", nil)
	features := []feature.Feature{a, b}
	stream := "b,a,y\nred,1.0,0\nred,2.0,0\nblue,5.0,1\nblue,6.0,1\n"
	tbl, labels, err := csv.ReadTable(strings.NewReader(stream), features, "y")
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	c, err := New(features, MaxDepth(1))
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	tree, err := c.Fit(ctx, tbl, labels)
	if err != nil {
		t.Fatalf("fitting: %v", err)
	}
	accuracy, err := tree.Test(ctx, tbl, labels)
	if err != nil {
		t.Fatalf("testing: %v", err)
	}
	if accuracy != 1.0 {
		t.Errorf("expected accuracy 1.0 on the training data, got %v", accuracy)
	}
}

func TestFitRejectsNonBinaryLabels(t *testing.T) {
	c, err := NewFromKinds([]string{feature.Real})
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	tbl := realTable(t, [][]float64{{1}, {2}})
	_, err = c.Fit(context.Background(), tbl, []int{0, 2})
	if err == nil {
		t.Error("expected an error on a non-binary label")
	}
}

// A pure subsample must terminate before any stopping-parameter test,
// so pure labels produce a single-node tree even when splitting would
// otherwise be allowed.
func TestFitPureLabelsProduceSingleLeaf(t *testing.T) {
	ctx := context.Background()
	c, err := NewFromKinds([]string{feature.Real})
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	tbl := realTable(t, [][]float64{{1}, {2}, {3}})
	tree, err := c.Fit(ctx, tbl, []int{1, 1, 1})
	if err != nil {
		t.Fatalf("fitting: %v", err)
	}
	root, err := tree.Get(ctx, tree.RootID)
	if err != nil {
		t.Fatalf("retrieving root: %v", err)
	}
	if !root.Leaf {
		t.Fatal("expected a terminal root for pure labels")
	}
	if root.Class != 1 {
		t.Errorf("expected terminal class 1, got %d", root.Class)
	}
}

func TestFitMaxDepthZeroPredictsMajority(t *testing.T) {
	ctx := context.Background()
	c, err := NewFromKinds([]string{feature.Real}, MaxDepth(0))
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	tbl := realTable(t, [][]float64{{1}, {2}, {3}})
	tree, err := c.Fit(ctx, tbl, []int{0, 0, 1})
	if err != nil {
		t.Fatalf("fitting: %v", err)
	}
	root, err := tree.Get(ctx, tree.RootID)
	if err != nil {
		t.Fatalf("retrieving root: %v", err)
	}
	if !root.Leaf {
		t.Fatal("expected a terminal root at depth limit 0")
	}
	if root.Class != 0 {
		t.Errorf("expected majority class 0, got %d", root.Class)
	}
}

func TestFitMinSamplesSplitForcesLeaf(t *testing.T) {
	ctx := context.Background()
	c, err := NewFromKinds([]string{feature.Real}, MinSamplesSplit(5))
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	tbl := realTable(t, [][]float64{{1}, {2}, {3}})
	tree, err := c.Fit(ctx, tbl, []int{0, 0, 1})
	if err != nil {
		t.Fatalf("fitting: %v", err)
	}
	root, err := tree.Get(ctx, tree.RootID)
	if err != nil {
		t.Fatalf("retrieving root: %v", err)
	}
	if !root.Leaf || root.Class != 0 {
		t.Errorf("expected terminal root with class 0, got leaf=%v class=%d", root.Leaf, root.Class)
	}
}

// Every candidate cut over {1,2,3} leaves one side with a single row,
// so a minimum leaf size of 2 rejects them all and the node falls back
// to its majority class.
func TestFitMinSamplesLeafRejectsAllSplits(t *testing.T) {
	ctx := context.Background()
	c, err := NewFromKinds([]string{feature.Real}, MinSamplesLeaf(2))
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	tbl := realTable(t, [][]float64{{1}, {2}, {3}})
	tree, err := c.Fit(ctx, tbl, []int{0, 0, 1})
	if err != nil {
		t.Fatalf("fitting: %v", err)
	}
	root, err := tree.Get(ctx, tree.RootID)
	if err != nil {
		t.Fatalf("retrieving root: %v", err)
	}
	if !root.Leaf {
		t.Fatal("expected a terminal root when every split violates the leaf minimum")
	}
	if root.Class != 0 {
		t.Errorf("expected majority class 0, got %d", root.Class)
	}
}

func TestFitEndToEndRealFeature(t *testing.T) {
	ctx := context.Background()
	c, err := NewFromKinds([]string{feature.Real}, MaxDepth(1))
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	tbl := realTable(t, [][]float64{{1}, {2}, {3}, {4}, {5}, {6}})
	tree, err := c.Fit(ctx, tbl, []int{0, 0, 0, 1, 1, 1})
	if err != nil {
		t.Fatalf("fitting: %v", err)
	}
	root, err := tree.Get(ctx, tree.RootID)
	if err != nil {
		t.Fatalf("retrieving root: %v", err)
	}
	if root.Leaf {
		t.Fatal("expected the root to split on a separable feature")
	}
	tc, ok := root.Split.(feature.ThresholdCriterion)
	if !ok {
		t.Fatalf("expected a threshold split on a real feature, got %T", root.Split)
	}
	if tc.Threshold() != 3.5 {
		t.Errorf("expected root threshold 3.5, got %v", tc.Threshold())
	}

	testTbl := realTable(t, [][]float64{{0}, {10}})
	predicted, err := tree.PredictTable(ctx, testTbl)
	if err != nil {
		t.Fatalf("predicting: %v", err)
	}
	expected := []int{0, 1}
	for i, p := range predicted {
		if p != expected[i] {
			t.Errorf("expected class %d for row %d, got %d", expected[i], i, p)
		}
	}

	accuracy, err := tree.Test(ctx, tbl, []int{0, 0, 0, 1, 1, 1})
	if err != nil {
		t.Fatalf("testing: %v", err)
	}
	if accuracy != 1.0 {
		t.Errorf("expected accuracy 1.0 on the training data, got %v", accuracy)
	}
}

func TestFitCategoricalSplitPartitionsObservedCategories(t *testing.T) {
	ctx := context.Background()
	f := feature.NewCategoricalFeature("color", nil)
	c, err := New([]feature.Feature{f}, MaxDepth(1))
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	rows := [][]interface{}{{"A"}, {"A"}, {"B"}, {"B"}, {"C"}, {"C"}}
	labels := []int{0, 0, 1, 1, 0, 1}
	tbl, err := dataset.FromRows([]feature.Feature{f}, rows)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	tree, err := c.Fit(ctx, tbl, labels)
	if err != nil {
		t.Fatalf("fitting: %v", err)
	}
	root, err := tree.Get(ctx, tree.RootID)
	if err != nil {
		t.Fatalf("retrieving root: %v", err)
	}
	if root.Leaf {
		t.Fatal("expected the root to split on the categorical feature")
	}
	cc, ok := root.Split.(feature.CategorySetCriterion)
	if !ok {
		t.Fatalf("expected a category-set split, got %T", root.Split)
	}
	left := make(map[string]bool)
	for _, cat := range cc.Categories() {
		if !strInSlice(cat, []string{"A", "B", "C"}) {
			t.Errorf("split routes unobserved category %q left", cat)
		}
		if left[cat] {
			t.Errorf("split lists category %q twice", cat)
		}
		left[cat] = true
	}
	if len(left) == 0 || len(left) == 3 {
		t.Errorf("expected a proper partition of the observed categories, got %d left", len(left))
	}
	// A has a 0.0 positive rate, B 1.0 and C 0.5; both achievable cuts
	// yield the same gain, so the smaller encoded threshold wins and A
	// alone is routed left.
	if len(left) != 1 || !left["A"] {
		t.Errorf("expected {A} routed left, got %v", cc.Categories())
	}
}

func TestFitCategoricalPredictionRoutesBySplitCategories(t *testing.T) {
	ctx := context.Background()
	f := feature.NewCategoricalFeature("color", []string{"A", "B"})
	c, err := New([]feature.Feature{f})
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	rows := [][]interface{}{{"A"}, {"A"}, {"B"}, {"B"}}
	tbl, err := dataset.FromRows([]feature.Feature{f}, rows)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	tree, err := c.Fit(ctx, tbl, []int{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("fitting: %v", err)
	}
	for i, expected := range []int{0, 0, 1, 1} {
		p, err := tree.Predict(ctx, tbl.Row(i))
		if err != nil {
			t.Fatalf("predicting row %d: %v", i, err)
		}
		if p != expected {
			t.Errorf("expected class %d for row %d, got %d", expected, i, p)
		}
	}
}

func TestFitConstantFeaturesFallBackToMajority(t *testing.T) {
	ctx := context.Background()
	c, err := NewFromKinds([]string{feature.Real})
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	tbl := realTable(t, [][]float64{{5}, {5}, {5}})
	tree, err := c.Fit(ctx, tbl, []int{0, 1, 0})
	if err != nil {
		t.Fatalf("fitting: %v", err)
	}
	root, err := tree.Get(ctx, tree.RootID)
	if err != nil {
		t.Fatalf("retrieving root: %v", err)
	}
	if !root.Leaf {
		t.Fatal("expected a terminal root when no feature admits a split")
	}
	if root.Class != 0 {
		t.Errorf("expected majority class 0, got %d", root.Class)
	}
}

func TestFitIsDeterministic(t *testing.T) {
	ctx := context.Background()
	f0 := feature.NewRealFeature("x0")
	f1 := feature.NewCategoricalFeature("x1", nil)
	features := []feature.Feature{f0, f1}
	rows := [][]interface{}{
		{1.0, "A"}, {2.0, "B"}, {3.0, "A"}, {4.0, "C"},
		{5.0, "B"}, {6.0, "C"}, {2.5, "A"}, {4.5, "B"},
	}
	labels := []int{0, 1, 0, 1, 1, 0, 0, 1}
	tbl, err := dataset.FromRows(features, rows)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	c, err := New(features, MinSamplesLeaf(1))
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	first, err := c.Fit(ctx, tbl, labels)
	if err != nil {
		t.Fatalf("first fit: %v", err)
	}
	second, err := c.Fit(ctx, tbl, labels)
	if err != nil {
		t.Fatalf("second fit: %v", err)
	}
	if first.String() != second.String() {
		t.Errorf("fitting the same data twice produced different trees:\n%s\nvs\n%s", first, second)
	}
}

func TestRankCategoriesOrdersByPositiveRate(t *testing.T) {
	values := []string{"b", "a", "b", "c", "a", "c"}
	labels := []int{1, 0, 1, 1, 0, 0}
	ranks, order := rankCategories(values, labels)
	// Rates: a 0.0, c 0.5, b 1.0.
	expected := []string{"a", "c", "b"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d ranked categories, got %d", len(expected), len(order))
	}
	for i, cat := range expected {
		if order[i] != cat {
			t.Errorf("expected category %q at rank %d, got %q", cat, i, order[i])
		}
		if ranks[cat] != i {
			t.Errorf("expected rank %d for category %q, got %d", i, cat, ranks[cat])
		}
	}
}

func TestRankCategoriesBreaksRateTiesByFirstEncounter(t *testing.T) {
	values := []string{"z", "a", "z", "a"}
	labels := []int{1, 0, 0, 1}
	_, order := rankCategories(values, labels)
	// Both rates are 0.5; z was seen first.
	if order[0] != "z" || order[1] != "a" {
		t.Errorf("expected tie to preserve first-encounter order [z a], got %v", order)
	}
}

func TestMajorityClassBreaksTiesByFirstEncounter(t *testing.T) {
	if got := majorityClass([]int{1, 1, 0, 0}); got != 1 {
		t.Errorf("expected tie to resolve to first-encountered label 1, got %d", got)
	}
	if got := majorityClass([]int{0, 1, 1}); got != 1 {
		t.Errorf("expected majority label 1, got %d", got)
	}
}

func strInSlice(s string, values []string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
