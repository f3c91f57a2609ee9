/*
Package dendra grows binary CART-style classification trees over mixed
real-valued and categorical features, selecting every split by Gini
impurity, and uses the fitted trees to classify new samples.
*/
package dendra

import (
	"fmt"

	"github.com/mbruna/dendra/dataset"
	"github.com/mbruna/dendra/feature"
)

/*
ShapeError is the error returned when the sample matrix and the label
vector given to Fit disagree in length, rather than silently truncating
or padding either of them.
*/
type ShapeError string

func (se ShapeError) Error() string {
	return string(se)
}

/*
Classifier grows classification trees according to its feature
typing and stopping policy. Its configuration is validated when it is
built and never changes afterwards, so a single Classifier can fit any
number of trees.
*/
type Classifier struct {
	features        []feature.Feature
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
}

// Option configures a Classifier.
type Option func(*Classifier)

// MaxDepth limits the depth of fitted trees: nodes at depth n are not
// split. A negative n grows full trees, subject to the other stopping
// parameters. Unbounded if not provided.
func MaxDepth(n int) Option {
	return func(c *Classifier) {
		c.maxDepth = n
	}
}

// MinSamplesSplit sets the minimum subsample size for a node to be
// considered for splitting: smaller nodes become leaves. No minimum if
// not provided or not positive.
func MinSamplesSplit(n int) Option {
	return func(c *Classifier) {
		c.minSamplesSplit = n
	}
}

// MinSamplesLeaf sets the minimum subsample size of each side of a
// split for the split to be valid: splits inducing a smaller side are
// rejected. No minimum if not provided or not positive.
func MinSamplesLeaf(n int) Option {
	return func(c *Classifier) {
		c.minSamplesLeaf = n
	}
}

/*
New takes the features typing the training-table columns and zero or
more options and returns a Classifier, or a feature.ConfigurationError
if any feature is of an unknown kind. The check happens here, before
any data is seen.
*/
func New(features []feature.Feature, opts ...Option) (*Classifier, error) {
	if len(features) == 0 {
		return nil, feature.ConfigurationError("a classifier needs at least one feature")
	}
	for _, f := range features {
		switch f.(type) {
		case *feature.RealFeature, *feature.CategoricalFeature:
		default:
			return nil, feature.ConfigurationError(fmt.Sprintf("unknown feature type %T for feature %v", f, f.Name()))
		}
	}
	c := &Classifier{features: features, maxDepth: -1}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

/*
NewFromKinds takes a slice of feature kind strings ("real" or
"categorical"), one per training-table column, and zero or more options
and returns a Classifier, or a feature.ConfigurationError if any kind is
unknown.
*/
func NewFromKinds(kinds []string, opts ...Option) (*Classifier, error) {
	features, err := feature.FromKinds(kinds)
	if err != nil {
		return nil, err
	}
	return New(features, opts...)
}

/*
Features returns the features typing the columns the classifier was
configured with, in column order.
*/
func (c *Classifier) Features() []feature.Feature {
	return c.features
}

/*
TrainingSet pairs a sample table with its binary label vector. Both are
only read during growing; subsamples are row-index views over them.
*/
type TrainingSet struct {
	Table  *dataset.Table
	Labels []int
}

/*
NewTrainingSet takes a dataset.Table and a label vector and returns a
TrainingSet, or an error: a ShapeError if their lengths differ, and a
plain error if the table is empty or any label is not 0 or 1.
*/
func NewTrainingSet(tbl *dataset.Table, labels []int) (*TrainingSet, error) {
	if tbl.Count() != len(labels) {
		return nil, ShapeError(fmt.Sprintf("%d sample rows for %d labels", tbl.Count(), len(labels)))
	}
	if tbl.Count() == 0 {
		return nil, fmt.Errorf("cannot fit an empty training set")
	}
	for i, y := range labels {
		if y != 0 && y != 1 {
			return nil, fmt.Errorf("label %d at row %d is not binary", y, i)
		}
	}
	return &TrainingSet{Table: tbl, Labels: labels}, nil
}
