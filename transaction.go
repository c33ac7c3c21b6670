package firedoc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/firedoc/fvalue"
)

// Tx is a handle on an open transaction. Reads inside the transaction pass
// Token() as their tx argument; writes are queued on the handle and only sent
// at commit. A Tx is not safe for concurrent use.
type Tx struct {
	token []byte
	ops   []WriteOp
}

// Token returns the server-issued transaction token, for pinning reads.
func (t *Tx) Token() []byte { return t.token }

// Pending returns the number of queued write ops.
func (t *Tx) Pending() int { return len(t.ops) }

// Create queues a create op.
func (t *Tx) Create(parent, collectionID, documentID string, fields fvalue.Fields) {
	t.ops = append(t.ops, NewCreate(parent, collectionID, documentID, fields))
}

// Upsert queues a full-document replacement for the document at path.
func (t *Tx) Upsert(path string, fields fvalue.Fields) error {
	op, err := NewUpsert(path, fields)
	if err != nil {
		return err
	}
	t.ops = append(t.ops, op)
	return nil
}

// Update queues a masked update for the document at path.
func (t *Tx) Update(path string, fields fvalue.Fields, updateMask []string) error {
	op, err := NewUpdate(path, fields, updateMask)
	if err != nil {
		return err
	}
	t.ops = append(t.ops, op)
	return nil
}

// Delete queues a delete for the document at path.
func (t *Tx) Delete(path string) error {
	op, err := NewDelete(path)
	if err != nil {
		return err
	}
	t.ops = append(t.ops, op)
	return nil
}

// TxFunc is the unit of work executed inside a transaction. It reads through
// the client with tx.Token() and queues writes on tx; the returned value is
// handed back by RunTransaction after a successful commit.
type TxFunc[T any] func(ctx context.Context, c *Client, tx *Tx) (T, error)

// RunTransaction begins a read-write transaction, runs fn, and commits the
// queued writes on success. On an error or a panic inside fn the transaction
// is rolled back and the failure is returned wrapped in *TxAbortedError;
// panics do not escape. A unit of work that queues more than MaxTxWriteOps
// ops fails the same way before any commit attempt.
func RunTransaction[T any](ctx context.Context, c *Client, fn TxFunc[T]) (T, error) {
	var zero T

	tx, err := c.BeginTransaction(ctx)
	if err != nil {
		return zero, err
	}

	out, err := runGuarded(ctx, c, tx, fn)
	if err != nil {
		// A failed rollback leaves server-side locks behind; the caller
		// must see both faults.
		if rbErr := c.Rollback(ctx, tx.token); rbErr != nil {
			c.log.Error(ctx, "transaction rollback failed", "error", rbErr)
			err = errors.Join(err, rbErr)
		}
		return zero, &TxAbortedError{Cause: err}
	}

	// An over-long queue is abandoned without a rollback call: the server
	// expires unfinished transactions on its own, and nothing was written.
	if len(tx.ops) > MaxTxWriteOps {
		err := validationErrorf("transaction queued %d ops, exceeding the %d-op limit", len(tx.ops), MaxTxWriteOps)
		return zero, &TxAbortedError{Cause: err}
	}

	if _, err := c.Commit(ctx, tx.ops, tx.token); err != nil {
		return zero, err
	}
	return out, nil
}

// runGuarded runs fn with a recover fence so a panicking unit of work
// surfaces as an error and the caller still gets to roll back.
func runGuarded[T any](ctx context.Context, c *Client, tx *Tx, fn TxFunc[T]) (out T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in transaction: %v", p)
		}
	}()
	return fn(ctx, c, tx)
}

// BeginTransaction opens a read-write transaction and returns its handle.
func (c *Client) BeginTransaction(ctx context.Context) (*Tx, error) {
	resp, err := c.fs.BeginTransaction(ctx, c.beginTransactionRequest(time.Time{}))
	if err != nil {
		return nil, mapRPCError(err)
	}
	return &Tx{token: resp.GetTransaction()}, nil
}

// BeginReadOnlyTransaction opens a read-only transaction whose reads all
// observe the database as of readTime. Writes queued on the handle will be
// rejected by the server at commit.
func (c *Client) BeginReadOnlyTransaction(ctx context.Context, readTime time.Time) (*Tx, error) {
	resp, err := c.fs.BeginTransaction(ctx, c.beginTransactionRequest(readTime))
	if err != nil {
		return nil, mapRPCError(err)
	}
	return &Tx{token: resp.GetTransaction()}, nil
}

// CommitResult reports the commit time and per-op update times of a
// committed transaction.
type CommitResult struct {
	CommitTime  time.Time
	UpdateTimes []time.Time
}

// Commit atomically applies ops under the transaction token. Most callers
// should use RunTransaction instead; Commit is the low-level escape hatch.
func (c *Client) Commit(ctx context.Context, ops []WriteOp, tx []byte) (*CommitResult, error) {
	resp, err := c.fs.Commit(ctx, c.commitRequest(ops, tx))
	if err != nil {
		return nil, mapRPCError(err)
	}
	out := &CommitResult{
		CommitTime:  resp.GetCommitTime().AsTime(),
		UpdateTimes: make([]time.Time, 0, len(resp.GetWriteResults())),
	}
	for _, wr := range resp.GetWriteResults() {
		out.UpdateTimes = append(out.UpdateTimes, wr.GetUpdateTime().AsTime())
	}
	return out, nil
}

// Rollback abandons the transaction, releasing its locks.
func (c *Client) Rollback(ctx context.Context, tx []byte) error {
	if _, err := c.fs.Rollback(ctx, c.rollbackRequest(tx)); err != nil {
		return mapRPCError(err)
	}
	return nil
}
