package dendra

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mbruna/dendra/dataset"
	"github.com/mbruna/dendra/feature"
	"github.com/mbruna/dendra/queue"
	"github.com/mbruna/dendra/split"
	"github.com/mbruna/dendra/tree"
)

// Seed takes a context, a classifier, a training set, a queue and a
// node store and sets everything up so that workers that consume from
// the queue afterwards grow a tree classifying the training set's
// labels. Specifically it will create the root node of the tree on the
// node store and push a task to expand it, covering every training row
// at depth 0, on the queue.
// The function returns the tree that can be grown or an error if the
// training table's columns do not match the classifier's features, if
// the node cannot be created on the store, or the task pushed to the
// queue (in the amount of time allowed by the given context).
func Seed(ctx context.Context, c *Classifier, ts *TrainingSet, q queue.Queue, ns tree.NodeStore) (*tree.Tree, error) {
	if err := c.checkFeatures(ts.Table.Features()); err != nil {
		return nil, err
	}
	n := &tree.Node{}
	err := ns.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	rows := make([]int, ts.Table.Count())
	for i := range rows {
		rows[i] = i
	}
	task := &queue.Task{Node: n, Rows: rows, Depth: 0}
	t := tree.New(n.ID, ns, c.features)
	err = q.Push(ctx, task)
	if err != nil {
		ns.Delete(ctx, n)
		return nil, err
	}
	return t, nil
}

// BranchOut takes a context, a classifier, a task and the training set
// the tree in the task is being grown from, and expands the task's node:
// it either marks it terminal with a predicted class or installs the
// best split found over all features and returns the two tasks to
// expand the resulting children, covering the two sides of the
// partition at depth+1.
//
// The node becomes terminal when its subsample is pure (checked before
// any stopping-parameter test), when the stopping policy forbids
// splitting it, or when no feature yields a valid split; in the impure
// cases it predicts the most frequent label of its subsample.
func BranchOut(ctx context.Context, c *Classifier, task *queue.Task, t *tree.Tree, ts *TrainingSet) (tasks []*queue.Task, e error) {
	if len(task.Rows) == 0 {
		return nil, fmt.Errorf("expanding node %s: empty subsample", task.Node.ID)
	}
	defer func() {
		err := t.NodeStore.Store(ctx, task.Node)
		if e == nil {
			e = err
		}
	}()
	labels := make([]int, len(task.Rows))
	pure := true
	for i, r := range task.Rows {
		labels[i] = ts.Labels[r]
		if labels[i] != labels[0] {
			pure = false
		}
	}
	if pure {
		task.Node.Leaf = true
		task.Node.Class = labels[0]
		return nil, nil
	}

	var best *candidateSplit
	if c.splitAllowed(len(task.Rows), task.Depth) {
		for col, f := range c.features {
			cand, err := c.featureSplit(col, f, ts.Table, task.Rows, labels)
			if err != nil {
				return nil, err
			}
			if cand != nil && (best == nil || cand.gain > best.gain) {
				best = cand
			}
		}
	}
	if best == nil || (c.minSamplesSplit > 0 && len(task.Rows) < c.minSamplesSplit) {
		task.Node.Leaf = true
		task.Node.Class = majorityClass(labels)
		return nil, nil
	}

	task.Node.Split = best.criterion
	left := &tree.Node{ParentID: task.Node.ID}
	if err := t.NodeStore.Create(ctx, left); err != nil {
		return nil, err
	}
	right := &tree.Node{ParentID: task.Node.ID}
	if err := t.NodeStore.Create(ctx, right); err != nil {
		return nil, err
	}
	task.Node.LeftID = left.ID
	task.Node.RightID = right.ID
	return []*queue.Task{
		{Node: left, Rows: best.leftRows, Depth: task.Depth + 1},
		{Node: right, Rows: best.rightRows, Depth: task.Depth + 1},
	}, nil
}

// Work takes a context, a classifier, a tree, a queue, the training
// set and an emptyQueueSleep duration and enters a loop in which
// it:
//   - pulls a task from the queue,
//   - expands its node into new subnodes using BranchOut
//   - pushes the tasks for the new subnodes into the queue
//   - marks the task as completed on the queue
//
// If at some point no task can be pulled from the queue and
// the sum of tasks running and pending on the queue is 0, the
// worker ends returning nil. If no task can be pulled but the
// sum is not 0, then the worker will sleep for the given
// emptyQueueSleep duration and then retry.
//
// Work will return a non-nil error if the given context
// times out or is cancelled, if BranchOut returns a non-nil
// error or if an operation with the given queue returns a
// non-nil error.
func Work(ctx context.Context, c *Classifier, t *tree.Tree, q queue.Queue, ts *TrainingSet, emptyQueueSleep time.Duration) error {
	for {
		task, tctx, tcf, err := q.Pull(ctx)
		if err != nil {
			return err
		}
		if task == nil {
			r, p, err := q.Count(ctx)
			if err != nil {
				return err
			}
			if r+p == 0 {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(emptyQueueSleep):
			}
			continue
		}
		mctx, cancel := mergeCtxCancel(tctx, ctx)
		err = workTask(mctx, c, task, t, q, ts)
		cancel()
		tcf()
		if err != nil {
			return err
		}
		err = ctx.Err()
		if err != nil {
			return err
		}
	}
	return nil
}

/*
Fit builds a classification tree from the given sample table and binary
label vector and returns it. It fails with a ShapeError if the table
and labels disagree in length, or with an error if the table's columns
do not match the classifier's features. Growing happens through an
in-memory queue consumed by a single worker, so fitting twice on
identical input produces identical trees.
*/
func (c *Classifier) Fit(ctx context.Context, tbl *dataset.Table, labels []int) (*tree.Tree, error) {
	ts, err := NewTrainingSet(tbl, labels)
	if err != nil {
		return nil, err
	}
	q := queue.New()
	defer q.Stop(ctx)
	ns := tree.NewMemoryNodeStore()
	t, err := Seed(ctx, c, ts, q, ns)
	if err != nil {
		return nil, fmt.Errorf("seeding tree: %v", err)
	}
	if err := Work(ctx, c, t, q, ts, 10*time.Millisecond); err != nil {
		return nil, fmt.Errorf("growing tree: %v", err)
	}
	return t, nil
}

func workTask(ctx context.Context, c *Classifier, task *queue.Task, t *tree.Tree, q queue.Queue, ts *TrainingSet) error {
	defer func() {
		q.Drop(ctx, task.ID())
	}()
	tasks, err := BranchOut(ctx, c, task, t, ts)
	if err != nil {
		return err
	}
	for _, st := range tasks {
		err = q.Push(ctx, st)
		if err != nil {
			return err
		}
	}
	return q.Complete(ctx, task.ID())
}

// checkFeatures verifies that a table's columns line up with the
// classifier's features by position, name and kind. Split search
// indexes table columns by feature position, so a misaligned table
// must be rejected before any node is expanded.
func (c *Classifier) checkFeatures(features []feature.Feature) error {
	if len(features) != len(c.features) {
		return ShapeError(fmt.Sprintf("table has %d columns for %d classifier features", len(features), len(c.features)))
	}
	for i, f := range c.features {
		tf := features[i]
		if tf.Name() != f.Name() {
			return feature.ConfigurationError(fmt.Sprintf("table column %d holds feature %s, classifier expects %s", i, tf.Name(), f.Name()))
		}
		switch f.(type) {
		case *feature.RealFeature:
			if _, ok := tf.(*feature.RealFeature); !ok {
				return feature.ConfigurationError(fmt.Sprintf("table column %s is not real as the classifier expects", f.Name()))
			}
		case *feature.CategoricalFeature:
			if _, ok := tf.(*feature.CategoricalFeature); !ok {
				return feature.ConfigurationError(fmt.Sprintf("table column %s is not categorical as the classifier expects", f.Name()))
			}
		}
	}
	return nil
}

func (c *Classifier) splitAllowed(size, depth int) bool {
	if c.maxDepth >= 0 && depth >= c.maxDepth {
		return false
	}
	if c.minSamplesSplit > 0 && size < c.minSamplesSplit {
		return false
	}
	return true
}

type candidateSplit struct {
	criterion feature.Criterion
	gain      float64
	leftRows  []int
	rightRows []int
}

// featureSplit evaluates one feature column over a subsample and
// returns the best valid split it admits, or nil if the feature is
// constant on the subsample or every cut violates the minimum leaf
// size.
func (c *Classifier) featureSplit(col int, f feature.Feature, tbl *dataset.Table, rows []int, labels []int) (*candidateSplit, error) {
	var encoded []float64
	var ranked []string
	switch f := f.(type) {
	case *feature.RealFeature:
		encoded = tbl.RealValues(col, rows)
	case *feature.CategoricalFeature:
		values := tbl.CategoricalValues(col, rows)
		var ranks map[string]int
		ranks, ranked = rankCategories(values, labels)
		encoded = make([]float64, len(values))
		for i, v := range values {
			encoded[i] = float64(ranks[v])
		}
	default:
		return nil, feature.ConfigurationError(fmt.Sprintf("unknown feature type %T for feature %v", f, f.Name()))
	}

	res, err := split.FindBest(encoded, labels)
	if err == split.ErrConstantFeature {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var leftRows, rightRows []int
	for i, v := range encoded {
		if v < res.Threshold {
			leftRows = append(leftRows, rows[i])
		} else {
			rightRows = append(rightRows, rows[i])
		}
	}
	if c.minSamplesLeaf > 0 && (len(leftRows) < c.minSamplesLeaf || len(rightRows) < c.minSamplesLeaf) {
		return nil, nil
	}

	cand := &candidateSplit{gain: res.Gain, leftRows: leftRows, rightRows: rightRows}
	switch f := f.(type) {
	case *feature.RealFeature:
		cand.criterion = feature.NewThresholdCriterion(f, res.Threshold)
	case *feature.CategoricalFeature:
		// Translate encoded ranks back to the raw categories routed
		// left; the rank mapping itself is discarded.
		var leftCategories []string
		for rank, cat := range ranked {
			if float64(rank) < res.Threshold {
				leftCategories = append(leftCategories, cat)
			}
		}
		cand.criterion = feature.NewCategorySetCriterion(f, leftCategories)
	}
	return cand, nil
}

// rankCategories assigns each category observed in values an integer
// rank by sorting categories on their positive-label rate ascending.
// The sort is stable over first-encounter order, so rate ties resolve
// deterministically. It returns the category-to-rank mapping and the
// categories ordered by rank.
func rankCategories(values []string, labels []int) (map[string]int, []string) {
	counts := make(map[string]int)
	positives := make(map[string]int)
	var order []string
	for i, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
		positives[v] += labels[i]
	}
	sort.SliceStable(order, func(i, j int) bool {
		ri := float64(positives[order[i]]) / float64(counts[order[i]])
		rj := float64(positives[order[j]]) / float64(counts[order[j]])
		return ri < rj
	})
	ranks := make(map[string]int, len(order))
	for rank, cat := range order {
		ranks[cat] = rank
	}
	return ranks, order
}

// majorityClass returns the most frequent label; on frequency ties the
// label encountered first wins, keeping the choice deterministic.
func majorityClass(labels []int) int {
	counts := make(map[int]int)
	var order []int
	for _, y := range labels {
		if counts[y] == 0 {
			order = append(order, y)
		}
		counts[y]++
	}
	best := order[0]
	for _, y := range order[1:] {
		if counts[y] > counts[best] {
			best = y
		}
	}
	return best
}

func mergeCtxCancel(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	mctx, cancel := context.WithCancel(ctx1)
	go func() {
		select {
		case <-mctx.Done():
		case <-ctx2.Done():
			cancel()
		}
	}()
	return mctx, cancel
}
