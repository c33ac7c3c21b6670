package firedoc

import (
	"context"
	"errors"
	"io"
	"strings"

	pb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/firedoc/fvalue"
	"github.com/dmitrijs2005/firedoc/query"
)

// GetDocument fetches a single document by its database-relative path. A
// missing document is not an error: the result is (nil, nil). mask limits
// the returned fields, tx pins the read to an open transaction; both may be
// nil.
func (c *Client) GetDocument(ctx context.Context, path string, mask []string, tx []byte) (*Document, error) {
	if err := validatePartialPath(path); err != nil {
		return nil, err
	}

	resp, err := c.fs.GetDocument(ctx, c.getDocumentRequest(path, mask, tx))
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
			return nil, nil
		}
		return nil, mapRPCError(err)
	}
	return DocumentFromWire(resp)
}

// BatchGetDocuments reads many documents by path. Paths are split into
// chunks of at most MaxBatchGetDocs before any network call. Found documents
// are delivered to each as they arrive on the server stream, with no
// buffering beyond the current chunk; the returned slice holds the resource
// names of the paths that did not exist.
func (c *Client) BatchGetDocuments(ctx context.Context, paths []string, mask []string, tx []byte, each func(*Document) error) ([]string, error) {
	if err := validatePartialPaths(paths); err != nil {
		return nil, err
	}

	var missing []string
	for chunk := range chunks(paths, MaxBatchGetDocs) {
		stream, err := c.fs.BatchGetDocuments(ctx, c.batchGetDocumentsRequest(chunk, mask, tx))
		if err != nil {
			return nil, mapRPCError(err)
		}
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, mapRPCError(err)
			}

			switch r := resp.GetResult().(type) {
			case *pb.BatchGetDocumentsResponse_Found:
				doc, err := DocumentFromWire(r.Found)
				if err != nil {
					return nil, err
				}
				if err := each(doc); err != nil {
					return nil, err
				}
			case *pb.BatchGetDocumentsResponse_Missing:
				missing = append(missing, r.Missing)
			default:
				c.log.Warn(ctx, "batch get returned a response without a result")
			}
		}
	}
	return missing, nil
}

// ListDocumentsOptions selects what ListDocuments reads.
type ListDocumentsOptions struct {
	// Parent path of the collection, empty for a top-level collection.
	Parent string
	// CollectionID of the listed collection.
	CollectionID string
	// OrderBy expression, e.g. "priority desc".
	OrderBy string
	// PageSize per chunk; defaults to 100.
	PageSize int32
	// Mask limits the returned fields.
	Mask []string
	// Transaction pins reads to an open transaction.
	Transaction []byte
}

// ListDocumentsPage fetches one chunk of a collection listing.
func (c *Client) ListDocumentsPage(ctx context.Context, opts ListDocumentsOptions, pageToken string) ([]*Document, string, error) {
	resp, err := c.fs.ListDocuments(ctx, c.listDocumentsRequest(opts, pageToken))
	if err != nil {
		return nil, "", mapRPCError(err)
	}
	docs := make([]*Document, 0, len(resp.GetDocuments()))
	for _, d := range resp.GetDocuments() {
		doc, err := DocumentFromWire(d)
		if err != nil {
			return nil, "", err
		}
		docs = append(docs, doc)
	}
	return docs, resp.GetNextPageToken(), nil
}

// ListDocumentsAll drives ListDocumentsPage through every continuation
// token and returns the concatenated documents.
func (c *Client) ListDocumentsAll(ctx context.Context, opts ListDocumentsOptions) ([]*Document, error) {
	return FetchAllPages(ctx, func(ctx context.Context, pageToken string) ([]*Document, string, error) {
		return c.ListDocumentsPage(ctx, opts, pageToken)
	})
}

// RunQuery executes a structured query under parent and streams each result
// document to the callback. It returns the number of documents delivered.
// An error from the callback stops the stream and is returned as-is.
func (c *Client) RunQuery(ctx context.Context, parent string, q *pb.StructuredQuery, tx []byte, each func(*Document) error) (int64, error) {
	stream, err := c.fs.RunQuery(ctx, c.runQueryRequest(parent, q, tx))
	if err != nil {
		return 0, mapRPCError(err)
	}

	var n int64
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, mapRPCError(err)
		}
		// Progress-only responses carry no document.
		if resp.GetDocument() == nil {
			continue
		}
		doc, err := DocumentFromWire(resp.GetDocument())
		if err != nil {
			return n, err
		}
		n++
		if err := each(doc); err != nil {
			return n, err
		}
	}
}

// SearchPrefix scans collection for documents whose string field starts
// with prefix, in field order, delivering matches to each. The scan issues a
// ">=" range query and stops at the first value that no longer carries the
// prefix. With includeExact false, a value equal to the prefix itself is
// skipped. Returns the number of delivered documents.
func (c *Client) SearchPrefix(ctx context.Context, parent, collection, field, prefix string, includeExact bool, tx []byte, each func(*Document) error) (int64, error) {
	q := query.Collection(collection, false).
		Where(field, ">=", fvalue.String(prefix)).
		OrderBy(field, "asc").
		Build()

	var n int64
	_, err := c.RunQuery(ctx, parent, q, tx, func(doc *Document) error {
		v, ok := doc.Fields.Get(field)
		if !ok {
			return errStopScan
		}
		s, ok := v.AsString()
		if !ok || !strings.HasPrefix(s, prefix) {
			return errStopScan
		}
		if !includeExact && s == prefix {
			return nil
		}
		n++
		return each(doc)
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return n, err
	}
	return n, nil
}

var errStopScan = errors.New("firedoc: stop scan")

// PartitionQueryPage fetches one chunk of query partition cursors.
func (c *Client) PartitionQueryPage(ctx context.Context, path string, q *pb.StructuredQuery, partitionCount int64, pageSize int32, pageToken string) ([]*pb.Cursor, string, error) {
	resp, err := c.fs.PartitionQuery(ctx, c.partitionQueryRequest(path, q, partitionCount, pageSize, pageToken))
	if err != nil {
		return nil, "", mapRPCError(err)
	}
	return resp.GetPartitions(), resp.GetNextPageToken(), nil
}

// PartitionQueryAll returns every partition cursor for the query.
func (c *Client) PartitionQueryAll(ctx context.Context, path string, q *pb.StructuredQuery, partitionCount int64, pageSize int32) ([]*pb.Cursor, error) {
	return FetchAllPages(ctx, func(ctx context.Context, pageToken string) ([]*pb.Cursor, string, error) {
		return c.PartitionQueryPage(ctx, path, q, partitionCount, pageSize, pageToken)
	})
}

// ListCollectionIDsPage fetches one chunk of collection ids under path.
func (c *Client) ListCollectionIDsPage(ctx context.Context, path string, pageSize int32, pageToken string) ([]string, string, error) {
	resp, err := c.fs.ListCollectionIds(ctx, c.listCollectionIDsRequest(path, pageSize, pageToken))
	if err != nil {
		return nil, "", mapRPCError(err)
	}
	return resp.GetCollectionIds(), resp.GetNextPageToken(), nil
}

// ListCollectionIDsAll returns every collection id under path.
func (c *Client) ListCollectionIDsAll(ctx context.Context, path string, pageSize int32) ([]string, error) {
	return FetchAllPages(ctx, func(ctx context.Context, pageToken string) ([]string, string, error) {
		return c.ListCollectionIDsPage(ctx, path, pageSize, pageToken)
	})
}

// chunks yields sub-slices of at most size elements, preserving order.
func chunks[T any](items []T, size int) func(func([]T) bool) {
	return func(yield func([]T) bool) {
		for len(items) > 0 {
			n := min(size, len(items))
			if !yield(items[:n]) {
				return
			}
			items = items[n:]
		}
	}
}
