package feature

import "fmt"

// Kinds of features a classifier can be configured with.
const (
	Real        = "real"
	Categorical = "categorical"
)

/*
ConfigurationError is the error returned when a classifier or a feature
is built from an invalid specification, such as an unknown feature kind.
It is always detected at construction time, before any data is seen.
*/
type ConfigurationError string

func (ce ConfigurationError) Error() string {
	return string(ce)
}

/*
Feature represents a property that can be observed on a sample.
*/
type Feature interface {
	Name() string
	Valid(interface{}) (bool, error)
}

/*
RealFeature represents a property that can be observed and that takes
continuous, ordered numeric values.
*/
type RealFeature struct {
	name string
}

/*
CategoricalFeature represents a property that can be observed and that
takes values from an unordered, finite alphabet of categories. An empty
alphabet means the categories are not known upfront and any string value
is accepted.
*/
type CategoricalFeature struct {
	name       string
	categories []string
}

/*
NewRealFeature takes a name string and returns a real feature with the
given name.
*/
func NewRealFeature(name string) *RealFeature {
	return &RealFeature{name}
}

/*
NewCategoricalFeature takes a name string and a slice of category strings
and returns a categorical feature with the given name and categories.
*/
func NewCategoricalFeature(name string, categories []string) *CategoricalFeature {
	return &CategoricalFeature{name, categories}
}

/*
New takes a name and a kind string and returns a feature of that kind or
a ConfigurationError if the kind is neither "real" nor "categorical".
*/
func New(name, kind string) (Feature, error) {
	switch kind {
	case Real:
		return NewRealFeature(name), nil
	case Categorical:
		return NewCategoricalFeature(name, nil), nil
	}
	return nil, ConfigurationError(fmt.Sprintf("unknown feature kind %q for feature %s", kind, name))
}

/*
FromKinds takes a slice of kind strings and returns a slice of features,
one per kind, named x0, x1... in column order. It returns a
ConfigurationError if any kind is unknown.
*/
func FromKinds(kinds []string) ([]Feature, error) {
	features := make([]Feature, 0, len(kinds))
	for i, k := range kinds {
		f, err := New(fmt.Sprintf("x%d", i), k)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, nil
}

/*
Name returns a string with the name of the feature
*/
func (rf *RealFeature) Name() string {
	return rf.name
}

/*
Valid receives an interface value and returns a boolean and an error.
When the value parameter is a float64 it returns true and nil, otherwise
it returns false and an error describing the reason.
*/
func (rf *RealFeature) Valid(value interface{}) (bool, error) {
	if _, ok := value.(float64); !ok {
		return false, fmt.Errorf("real feature %s expects float64 value, got %T value", rf.name, value)
	}
	return true, nil
}

func (rf *RealFeature) String() string {
	return rf.name
}

/*
Name returns a string with the name of the feature
*/
func (cf *CategoricalFeature) Name() string {
	return cf.name
}

/*
Valid receives an interface value and returns a boolean and an error.
When the value parameter is a string belonging to the feature's
categories (or any string if the feature was built without an explicit
alphabet), the method returns true and nil. Otherwise it returns false
and an error describing the reason.
*/
func (cf *CategoricalFeature) Valid(value interface{}) (bool, error) {
	vs, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("categorical feature %s expects string value, got %T value", cf.name, value)
	}
	if len(cf.categories) == 0 {
		return true, nil
	}
	for _, c := range cf.categories {
		if c == vs {
			return true, nil
		}
	}
	return false, fmt.Errorf("categorical feature %s got unknown category %q", cf.name, vs)
}

/*
Categories returns a string slice with the categories declared for the
feature, or nil if the feature accepts any string value.
*/
func (cf *CategoricalFeature) Categories() []string {
	return cf.categories
}

func (cf *CategoricalFeature) String() string {
	return cf.name
}
