package firedoc

import (
	pb "cloud.google.com/go/firestore/apiv1/firestorepb"

	"github.com/dmitrijs2005/firedoc/fvalue"
)

// Document pairs a document path with its field set.
type Document struct {
	Path   DocumentPath
	Fields fvalue.Fields
}

// DocumentFromWire converts a wire document, parsing its resource name.
func DocumentFromWire(d *pb.Document) (*Document, error) {
	path, err := ParseDocumentPath(d.GetName())
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Fields: fvalue.FieldsFromWire(d)}, nil
}

// AsValue wraps the document's fields as one map value.
func (d *Document) AsValue() fvalue.Value {
	return d.Fields.AsValue()
}

// Unmarshal fills dst from the document's fields.
func (d *Document) Unmarshal(dst any) error {
	return d.Fields.Unmarshal(dst)
}
