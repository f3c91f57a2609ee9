package dataset

import (
	"context"
	"testing"

	"github.com/mbruna/dendra/feature"
)

func testFeatures() []feature.Feature {
	return []feature.Feature{
		feature.NewRealFeature("age"),
		feature.NewCategoricalFeature("color", []string{"red", "blue"}),
	}
}

func TestAppendValidatesRows(t *testing.T) {
	tbl := New(testFeatures())
	if err := tbl.Append([]interface{}{1.5, "red"}); err != nil {
		t.Fatalf("unexpected error appending a valid row: %v", err)
	}
	if err := tbl.Append([]interface{}{1.5}); err == nil {
		t.Error("expected an error on a row narrower than the feature set")
	}
	if err := tbl.Append([]interface{}{"old", "red"}); err == nil {
		t.Error("expected an error on a string value for a real column")
	}
	if err := tbl.Append([]interface{}{1.5, "green"}); err == nil {
		t.Error("expected an error on a category outside the alphabet")
	}
	if tbl.Count() != 1 {
		t.Errorf("expected rejected rows not to be appended, got %d rows", tbl.Count())
	}
}

func TestColumnViewsFollowRowIndexes(t *testing.T) {
	tbl, err := FromRows(testFeatures(), [][]interface{}{
		{1.0, "red"},
		{2.0, "blue"},
		{3.0, "red"},
	})
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	reals := tbl.RealValues(0, []int{2, 0})
	if len(reals) != 2 || reals[0] != 3.0 || reals[1] != 1.0 {
		t.Errorf("expected real view [3 1], got %v", reals)
	}
	cats := tbl.CategoricalValues(1, []int{1, 2})
	if len(cats) != 2 || cats[0] != "blue" || cats[1] != "red" {
		t.Errorf("expected categorical view [blue red], got %v", cats)
	}
}

func TestRowExposesValuesByFeature(t *testing.T) {
	features := testFeatures()
	tbl, err := FromRows(features, [][]interface{}{{1.5, "blue"}})
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	s := tbl.Row(0)
	v, err := s.ValueFor(context.Background(), features[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1.5 {
		t.Errorf("expected value 1.5 for the real feature, got %v", v)
	}
	v, err = s.ValueFor(context.Background(), features[1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "blue" {
		t.Errorf("expected value \"blue\" for the categorical feature, got %v", v)
	}
	_, err = s.ValueFor(context.Background(), feature.NewRealFeature("weight"))
	if err == nil {
		t.Error("expected an error for a feature the table does not hold")
	}
}
