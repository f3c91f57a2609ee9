package feature

import "testing"

func TestNewBuildsKnownKinds(t *testing.T) {
	f, err := New("age", Real)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.(*RealFeature); !ok {
		t.Errorf("expected a *RealFeature, got %T", f)
	}
	f, err = New("color", Categorical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.(*CategoricalFeature); !ok {
		t.Errorf("expected a *CategoricalFeature, got %T", f)
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New("age", "ordinal")
	if err == nil {
		t.Fatal("expected an error for an unknown kind")
	}
	if _, ok := err.(ConfigurationError); !ok {
		t.Errorf("expected a ConfigurationError, got %T: %v", err, err)
	}
}

func TestFromKindsNamesColumns(t *testing.T) {
	features, err := FromKinds([]string{Real, Categorical, Real})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"x0", "x1", "x2"}
	for i, name := range expected {
		if features[i].Name() != name {
			t.Errorf("expected feature %d to be named %s, got %s", i, name, features[i].Name())
		}
	}
}

func TestRealFeatureValid(t *testing.T) {
	f := NewRealFeature("age")
	if ok, err := f.Valid(1.5); !ok {
		t.Errorf("expected 1.5 to be valid: %v", err)
	}
	if ok, _ := f.Valid("1.5"); ok {
		t.Error("expected a string value to be invalid for a real feature")
	}
	if ok, _ := f.Valid(1); ok {
		t.Error("expected an int value to be invalid for a real feature")
	}
}

func TestCategoricalFeatureValid(t *testing.T) {
	f := NewCategoricalFeature("color", []string{"red", "blue"})
	if ok, err := f.Valid("red"); !ok {
		t.Errorf("expected \"red\" to be valid: %v", err)
	}
	if ok, _ := f.Valid("green"); ok {
		t.Error("expected a category outside the alphabet to be invalid")
	}
	if ok, _ := f.Valid(1.5); ok {
		t.Error("expected a float64 value to be invalid for a categorical feature")
	}

	open := NewCategoricalFeature("color", nil)
	if ok, err := open.Valid("anything"); !ok {
		t.Errorf("expected any string to be valid without an alphabet: %v", err)
	}
}
