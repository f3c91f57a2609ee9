/*
Package redisq provides a queue.Queue backed by a redis DB, so that
workers across processes can share the expansion tasks of a growing
tree.
*/
package redisq

import (
	"context"
	"fmt"

	"github.com/mbruna/dendra/queue"
	redis "gopkg.in/redis.v5"
)

/*
EncodeDecoder is an interface for objects
that allow encoding tasks as slices of bytes and decoding
them back to tasks. It is used to serialize tasks into a
representation to store on redis
*/
type EncodeDecoder interface {

	//Encode receives a *queue.Task
	//and returns a slice of bytes with the task encoded or an
	//error if the encoding could not be performed for
	//some reason.
	Encode(context.Context, *queue.Task) ([]byte, error)

	//Decode receives a slice of bytes
	//and returns a *queue.Task decoded from the slice of bytes
	//or an error if the decoding could not be performed
	//for some reason.
	Decode(context.Context, []byte) (*queue.Task, error)
}

type redisQ struct {
	id         string
	rc         *redis.Client
	allTaskCtx context.Context
	allTaskCF  context.CancelFunc
	EncodeDecoder
}

/*
New returns a queue.Queue that uses the given redis client as a
backend. It uses the given id to prefix the keys used on the
redis client to keep the queue's data, which are the following:
  - id:pending is the key to a list with the ids of the pending tasks
  - id:running is the key to a list with the ids of the running tasks
  - id:task:task_id:data is the key to a string that holds the task
    data. Tasks are encoded and decoded using the given EncodeDecoder.

The returned queue is secure for concurrent use by multiple goroutines.
*/
func New(id string, rc *redis.Client, encDec EncodeDecoder) queue.Queue {
	ctx, cf := context.WithCancel(context.Background())
	return &redisQ{
		id:            id,
		rc:            rc,
		allTaskCtx:    ctx,
		allTaskCF:     cf,
		EncodeDecoder: encDec,
	}
}

// Push takes a task and stores it in the queue or
// returns an error. The task will count as pending.
func (rq *redisQ) Push(ctx context.Context, t *queue.Task) error {
	data, err := rq.Encode(ctx, t)
	if err != nil {
		return fmt.Errorf("pushing task %s to queue: %v", t.ID(), err)
	}
	_, err = rq.rc.Set(rq.taskDataKey(t.ID()), string(data), 0).Result()
	if err != nil {
		return fmt.Errorf("pushing task %s to queue: %v", t.ID(), err)
	}
	_, err = rq.rc.LPush(rq.pendingKey(), t.ID()).Result()
	if err != nil {
		return fmt.Errorf("pushing task %s to queue: %v", t.ID(), err)
	}
	return nil
}

// Pull moves a task from pending to running and returns it together
// with a context that is cancelled when the queue is stopped. If no
// task is pending it returns nil values and no error.
func (rq *redisQ) Pull(ctx context.Context) (*queue.Task, context.Context, context.CancelFunc, error) {
	id, err := rq.rc.RPopLPush(rq.pendingKey(), rq.runningKey()).Result()
	if err == redis.Nil {
		return nil, nil, nil, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("pulling task from queue: %v", err)
	}
	data, err := rq.rc.Get(rq.taskDataKey(id)).Result()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("pulling task %s from queue: retrieving data: %v", id, err)
	}
	t, err := rq.Decode(ctx, []byte(data))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("pulling task %s from queue: %v", id, err)
	}
	tctx, tcf := context.WithCancel(rq.allTaskCtx)
	return t, tctx, tcf, nil
}

// Drop takes the ID for a task and makes it available
// for pulling from the Queue again, unless it has been
// previously completed.
func (rq *redisQ) Drop(ctx context.Context, id string) error {
	removed, err := rq.rc.LRem(rq.runningKey(), 0, id).Result()
	if err != nil {
		return fmt.Errorf("dropping task %s: %v", id, err)
	}
	if removed == 0 {
		return nil
	}
	_, err = rq.rc.LPush(rq.pendingKey(), id).Result()
	if err != nil {
		return fmt.Errorf("dropping task %s: returning to pending: %v", id, err)
	}
	return nil
}

// Complete takes the ID for a task, removes it from the
// running state and deletes its data.
func (rq *redisQ) Complete(ctx context.Context, id string) error {
	_, err := rq.rc.LRem(rq.runningKey(), 0, id).Result()
	if err != nil {
		return fmt.Errorf("completing task %s: %v", id, err)
	}
	_, err = rq.rc.Del(rq.taskDataKey(id)).Result()
	if err != nil {
		return fmt.Errorf("completing task %s: deleting data: %v", id, err)
	}
	return nil
}

// Count returns the number of running and pending tasks
// in the queue or an error.
func (rq *redisQ) Count(ctx context.Context) (int, int, error) {
	running, err := rq.rc.LLen(rq.runningKey()).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("counting running tasks: %v", err)
	}
	pending, err := rq.rc.LLen(rq.pendingKey()).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("counting pending tasks: %v", err)
	}
	return int(running), int(pending), nil
}

// Stop stops the queue, cancelling the contexts of all
// pulled tasks.
func (rq *redisQ) Stop(ctx context.Context) error {
	rq.allTaskCF()
	return nil
}

func (rq *redisQ) pendingKey() string {
	return fmt.Sprintf("%s:pending", rq.id)
}

func (rq *redisQ) runningKey() string {
	return fmt.Sprintf("%s:running", rq.id)
}

func (rq *redisQ) taskDataKey(id string) string {
	return fmt.Sprintf("%s:task:%s:data", rq.id, id)
}
