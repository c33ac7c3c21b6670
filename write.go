package firedoc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/firedoc/fvalue"
)

// CreateDocument creates a new document under parent/collectionID. When
// documentID is empty a random UUID id is generated client-side, so the
// caller always knows the final path without inspecting the response. The
// call fails with an AlreadyExists transport error if the document exists.
func (c *Client) CreateDocument(ctx context.Context, parent, collectionID, documentID string, fields fvalue.Fields) (*Document, error) {
	if parent != "" {
		if err := validatePartialPath(parent); err != nil {
			return nil, err
		}
	}
	if documentID == "" {
		documentID = uuid.NewString()
	}

	resp, err := c.fs.CreateDocument(ctx, c.createDocumentRequest(parent, collectionID, documentID, fields, nil))
	if err != nil {
		return nil, mapRPCError(err)
	}
	return DocumentFromWire(resp)
}

// UpdateDocument writes fields to the document at path, creating it if
// absent. With a nil updateMask the whole field set is replaced: fields not
// present in the payload are removed from the stored document. A non-nil
// mask limits the write to the masked paths and leaves the rest untouched.
func (c *Client) UpdateDocument(ctx context.Context, path string, fields fvalue.Fields, updateMask []string) (*Document, error) {
	if err := validatePartialPath(path); err != nil {
		return nil, err
	}

	resp, err := c.fs.UpdateDocument(ctx, c.updateDocumentRequest(path, fields, updateMask, nil))
	if err != nil {
		return nil, mapRPCError(err)
	}
	return DocumentFromWire(resp)
}

// DeleteDocument removes the document at path. Deleting a document that
// does not exist is not an error.
func (c *Client) DeleteDocument(ctx context.Context, path string) error {
	if err := validatePartialPath(path); err != nil {
		return err
	}
	if _, err := c.fs.DeleteDocument(ctx, c.deleteDocumentRequest(path)); err != nil {
		return mapRPCError(err)
	}
	return nil
}

// BatchWriteResult reports the per-op outcome of a batch write. Entries are
// positionally aligned with the submitted ops: Statuses[i] is the gRPC-style
// status of ops[i], UpdateTimes[i] its commit time (zero when the op failed)
// and TransformResults[i] the values produced by its field transforms, if
// any.
type BatchWriteResult struct {
	Statuses         []WriteStatus
	UpdateTimes      []time.Time
	TransformResults [][]fvalue.Value
}

// WriteStatus is the outcome of one op inside a batch. Code 0 means OK.
type WriteStatus struct {
	Code    int32
	Message string
}

// BatchWrite submits up to MaxBatchWriteOps mutations in one non-atomic
// call: each op succeeds or fails independently. Exceeding the limit is
// rejected before any network traffic.
func (c *Client) BatchWrite(ctx context.Context, ops []WriteOp) (*BatchWriteResult, error) {
	if len(ops) > MaxBatchWriteOps {
		return nil, validationErrorf("batch of %d ops exceeds the %d-op limit", len(ops), MaxBatchWriteOps)
	}

	resp, err := c.fs.BatchWrite(ctx, c.batchWriteRequest(ops))
	if err != nil {
		return nil, mapRPCError(err)
	}

	out := &BatchWriteResult{
		Statuses:         make([]WriteStatus, 0, len(resp.GetStatus())),
		UpdateTimes:      make([]time.Time, 0, len(resp.GetWriteResults())),
		TransformResults: fvalue.ValuesFromWriteResults(resp.GetWriteResults()),
	}
	for _, st := range resp.GetStatus() {
		out.Statuses = append(out.Statuses, WriteStatus{Code: st.GetCode(), Message: st.GetMessage()})
	}
	for _, wr := range resp.GetWriteResults() {
		out.UpdateTimes = append(out.UpdateTimes, wr.GetUpdateTime().AsTime())
	}
	return out, nil
}

// LargeBatchWrite splits ops into MaxBatchWriteOps-sized batches and submits
// them sequentially, in order. Results are concatenated so indexes still line
// up with the input. A transport failure stops the run; earlier batches may
// already be applied.
func (c *Client) LargeBatchWrite(ctx context.Context, ops []WriteOp) (*BatchWriteResult, error) {
	out := &BatchWriteResult{}
	for chunk := range chunks(ops, MaxBatchWriteOps) {
		res, err := c.BatchWrite(ctx, chunk)
		if err != nil {
			return nil, err
		}
		out.Statuses = append(out.Statuses, res.Statuses...)
		out.UpdateTimes = append(out.UpdateTimes, res.UpdateTimes...)
		out.TransformResults = append(out.TransformResults, res.TransformResults...)
	}
	return out, nil
}
