package firedoc

import (
	"time"

	pb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/dmitrijs2005/firedoc/fvalue"
)

type writeKind int

const (
	writeCreate writeKind = iota
	writeUpdate
	writeDelete
)

// WriteOp is one pending mutation: a create, an update/upsert with an
// optional field mask, or a delete. Ops are accumulated by batch writes and
// transactions and only hit the network when the batch or commit is issued.
type WriteOp struct {
	kind       writeKind
	path       string
	fields     fvalue.Fields
	updateMask []string
}

// NewCreate builds a create op. The target path is assembled from the
// optional parent path (empty for a top-level collection), the collection id
// and the document id.
func NewCreate(parent, collectionID, documentID string, fields fvalue.Fields) WriteOp {
	return WriteOp{
		kind:   writeCreate,
		path:   DocPath(parent, collectionID, documentID),
		fields: fields,
	}
}

// NewUpsert builds a full-document update op. Without a field mask the
// server replaces the entire field set: fields absent from the payload are
// removed.
func NewUpsert(path string, fields fvalue.Fields) (WriteOp, error) {
	if err := validatePartialPath(path); err != nil {
		return WriteOp{}, err
	}
	return WriteOp{kind: writeUpdate, path: path, fields: fields}, nil
}

// NewUpdate builds an update op limited to the given field mask paths.
func NewUpdate(path string, fields fvalue.Fields, updateMask []string) (WriteOp, error) {
	if err := validatePartialPath(path); err != nil {
		return WriteOp{}, err
	}
	return WriteOp{kind: writeUpdate, path: path, fields: fields, updateMask: updateMask}, nil
}

// NewDelete builds a delete op for the document at path.
func NewDelete(path string) (WriteOp, error) {
	if err := validatePartialPath(path); err != nil {
		return WriteOp{}, err
	}
	return WriteOp{kind: writeDelete, path: path}, nil
}

// Path returns the database-relative target path of the op.
func (w WriteOp) Path() string { return w.path }

func (w WriteOp) toWire(c *Client) *pb.Write {
	name := c.docName(w.path)
	out := &pb.Write{UpdateMask: toDocumentMask(w.updateMask)}
	switch w.kind {
	case writeDelete:
		out.Operation = &pb.Write_Delete{Delete: name}
	default:
		out.Operation = &pb.Write_Update{Update: &pb.Document{
			Name:   name,
			Fields: w.fields.ToWire(),
		}}
	}
	return out
}

func writesToWire(c *Client, ops []WriteOp) []*pb.Write {
	out := make([]*pb.Write, len(ops))
	for i, op := range ops {
		out[i] = op.toWire(c)
	}
	return out
}

func toDocumentMask(paths []string) *pb.DocumentMask {
	if paths == nil {
		return nil
	}
	return &pb.DocumentMask{FieldPaths: paths}
}

// databasePath is "projects/<project>/databases/<db>".
func (c *Client) databasePath() string {
	return "projects/" + c.projectID + "/databases/" + c.databaseID
}

// docName turns a database-relative path into an absolute resource name.
func (c *Client) docName(relative string) string {
	return c.databasePath() + "/documents" + relative
}

func (c *Client) getDocumentRequest(path string, mask []string, tx []byte) *pb.GetDocumentRequest {
	req := &pb.GetDocumentRequest{
		Name: c.docName(path),
		Mask: toDocumentMask(mask),
	}
	if tx != nil {
		req.ConsistencySelector = &pb.GetDocumentRequest_Transaction{Transaction: tx}
	}
	return req
}

func (c *Client) batchGetDocumentsRequest(paths []string, mask []string, tx []byte) *pb.BatchGetDocumentsRequest {
	docs := make([]string, len(paths))
	for i, p := range paths {
		docs[i] = c.docName(p)
	}
	req := &pb.BatchGetDocumentsRequest{
		Database:  c.databasePath(),
		Documents: docs,
		Mask:      toDocumentMask(mask),
	}
	if tx != nil {
		req.ConsistencySelector = &pb.BatchGetDocumentsRequest_Transaction{Transaction: tx}
	}
	return req
}

func (c *Client) listDocumentsRequest(opts ListDocumentsOptions, pageToken string) *pb.ListDocumentsRequest {
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	req := &pb.ListDocumentsRequest{
		Parent:       c.docName(opts.Parent),
		CollectionId: opts.CollectionID,
		PageSize:     pageSize,
		PageToken:    pageToken,
		OrderBy:      opts.OrderBy,
		Mask:         toDocumentMask(opts.Mask),
	}
	if opts.Transaction != nil {
		req.ConsistencySelector = &pb.ListDocumentsRequest_Transaction{Transaction: opts.Transaction}
	}
	return req
}

func (c *Client) createDocumentRequest(parent, collectionID, documentID string, fields fvalue.Fields, responseMask []string) *pb.CreateDocumentRequest {
	return &pb.CreateDocumentRequest{
		Parent:       c.docName(parent),
		CollectionId: collectionID,
		DocumentId:   documentID,
		Document:     &pb.Document{Fields: fields.ToWire()},
		Mask:         toDocumentMask(responseMask),
	}
}

func (c *Client) updateDocumentRequest(path string, fields fvalue.Fields, updateMask, responseMask []string) *pb.UpdateDocumentRequest {
	return &pb.UpdateDocumentRequest{
		Document: &pb.Document{
			Name:   c.docName(path),
			Fields: fields.ToWire(),
		},
		UpdateMask: toDocumentMask(updateMask),
		Mask:       toDocumentMask(responseMask),
	}
}

func (c *Client) deleteDocumentRequest(path string) *pb.DeleteDocumentRequest {
	return &pb.DeleteDocumentRequest{Name: c.docName(path)}
}

func (c *Client) runQueryRequest(parent string, q *pb.StructuredQuery, tx []byte) *pb.RunQueryRequest {
	req := &pb.RunQueryRequest{
		Parent:    c.docName(parent),
		QueryType: &pb.RunQueryRequest_StructuredQuery{StructuredQuery: q},
	}
	if tx != nil {
		req.ConsistencySelector = &pb.RunQueryRequest_Transaction{Transaction: tx}
	}
	return req
}

func (c *Client) partitionQueryRequest(path string, q *pb.StructuredQuery, partitionCount int64, pageSize int32, pageToken string) *pb.PartitionQueryRequest {
	return &pb.PartitionQueryRequest{
		Parent:         c.docName(path),
		QueryType:      &pb.PartitionQueryRequest_StructuredQuery{StructuredQuery: q},
		PartitionCount: partitionCount,
		PageSize:       pageSize,
		PageToken:      pageToken,
	}
}

func (c *Client) listCollectionIDsRequest(path string, pageSize int32, pageToken string) *pb.ListCollectionIdsRequest {
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	return &pb.ListCollectionIdsRequest{
		Parent:    c.docName(path),
		PageSize:  pageSize,
		PageToken: pageToken,
	}
}

func (c *Client) batchWriteRequest(ops []WriteOp) *pb.BatchWriteRequest {
	return &pb.BatchWriteRequest{
		Database: c.databasePath(),
		Writes:   writesToWire(c, ops),
	}
}

// beginTransactionRequest builds a read-write transaction request, or a
// read-only one pinned at readTime when it is non-zero.
func (c *Client) beginTransactionRequest(readTime time.Time) *pb.BeginTransactionRequest {
	var opts *pb.TransactionOptions
	if readTime.IsZero() {
		opts = &pb.TransactionOptions{
			Mode: &pb.TransactionOptions_ReadWrite_{
				ReadWrite: &pb.TransactionOptions_ReadWrite{},
			},
		}
	} else {
		opts = &pb.TransactionOptions{
			Mode: &pb.TransactionOptions_ReadOnly_{
				ReadOnly: &pb.TransactionOptions_ReadOnly{
					ConsistencySelector: &pb.TransactionOptions_ReadOnly_ReadTime{
						ReadTime: timestamppb.New(readTime),
					},
				},
			},
		}
	}
	return &pb.BeginTransactionRequest{
		Database: c.databasePath(),
		Options:  opts,
	}
}

func (c *Client) commitRequest(ops []WriteOp, tx []byte) *pb.CommitRequest {
	return &pb.CommitRequest{
		Database:    c.databasePath(),
		Writes:      writesToWire(c, ops),
		Transaction: tx,
	}
}

func (c *Client) rollbackRequest(tx []byte) *pb.RollbackRequest {
	return &pb.RollbackRequest{
		Database:    c.databasePath(),
		Transaction: tx,
	}
}
