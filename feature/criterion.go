package feature

import (
	"context"
	"fmt"
	"strings"
)

/*
Criterion represents the splitting predicate an internal tree node
imposes on samples: samples satisfying it are routed to the left
subtree, the rest to the right one.

Its SatisfiedBy method takes a sample and returns a boolean indicating
if the sample satisfies the criterion.

Its Feature method returns the feature on which the criterion is applied.
*/
type Criterion interface {
	Feature() Feature
	SatisfiedBy(ctx context.Context, sample Sample) (bool, error)
}

/*
Sample is an interface for something that can satisfy a Criterion.

Its ValueFor method returns the value corresponding to the feature
passed as parameter.
*/
type Sample interface {
	ValueFor(context.Context, Feature) (interface{}, error)
}

/*
ThresholdCriterion represents a constraint on a real feature: values
strictly below the threshold satisfy it.

Its Threshold method returns the cut-point as a float64.
*/
type ThresholdCriterion interface {
	Criterion
	Threshold() float64
}

/*
CategorySetCriterion represents a constraint on a categorical feature:
values equal to one of the listed categories satisfy it.

Its Categories method returns the categories routed left.
*/
type CategorySetCriterion interface {
	Criterion
	Categories() []string
}

type thresholdCriterion struct {
	feature   *RealFeature
	threshold float64
}

type categorySetCriterion struct {
	feature    *CategoricalFeature
	categories []string
}

/*
NewThresholdCriterion takes a RealFeature and a float64 threshold and
returns a ThresholdCriterion satisfied by samples whose value for the
feature is strictly below the threshold.
*/
func NewThresholdCriterion(feature *RealFeature, threshold float64) ThresholdCriterion {
	return &thresholdCriterion{feature, threshold}
}

/*
NewCategorySetCriterion takes a CategoricalFeature and a slice of
category strings and returns a CategorySetCriterion satisfied by samples
whose value for the feature equals one of the given categories.
*/
func NewCategorySetCriterion(feature *CategoricalFeature, categories []string) CategorySetCriterion {
	return &categorySetCriterion{feature, categories}
}

/*
Feature returns the feature to which the constraint applies.
*/
func (tc *thresholdCriterion) Feature() Feature {
	return tc.feature
}

/*
SatisfiedBy receives a sample as parameter and returns a boolean
indicating if the sample satisfies the criterion: whether its float64
value for the feature is strictly below the threshold. It returns an
error if the sample does not define a float64 value for the feature.
*/
func (tc *thresholdCriterion) SatisfiedBy(ctx context.Context, sample Sample) (bool, error) {
	val, err := sample.ValueFor(ctx, tc.feature)
	if err != nil {
		return false, err
	}
	floatVal, ok := val.(float64)
	if !ok {
		return false, fmt.Errorf("evaluating criterion on %s: expected float64 value, got %T", tc.feature.Name(), val)
	}
	return floatVal < tc.threshold, nil
}

func (tc *thresholdCriterion) Threshold() float64 {
	return tc.threshold
}

func (tc *thresholdCriterion) String() string {
	return fmt.Sprintf("%s < %f", tc.feature.Name(), tc.threshold)
}

/*
Feature returns the feature to which the constraint applies.
*/
func (cc *categorySetCriterion) Feature() Feature {
	return cc.feature
}

/*
SatisfiedBy receives a sample as parameter and returns a boolean
indicating if the sample satisfies the criterion: whether its string
value for the feature equals one of the criterion's categories. It
returns an error if the sample does not define a string value for the
feature.
*/
func (cc *categorySetCriterion) SatisfiedBy(ctx context.Context, sample Sample) (bool, error) {
	val, err := sample.ValueFor(ctx, cc.feature)
	if err != nil {
		return false, err
	}
	stringVal, ok := val.(string)
	if !ok {
		return false, fmt.Errorf("evaluating criterion on %s: expected string value, got %T", cc.feature.Name(), val)
	}
	for _, c := range cc.categories {
		if c == stringVal {
			return true, nil
		}
	}
	return false, nil
}

func (cc *categorySetCriterion) Categories() []string {
	return cc.categories
}

func (cc *categorySetCriterion) String() string {
	return fmt.Sprintf("%s in {%s}", cc.feature.Name(), strings.Join(cc.categories, ", "))
}
