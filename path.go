package firedoc

import (
	"fmt"
	"regexp"
	"strings"
)

// documentPathRegex splits an absolute resource name
// `projects/<p>/databases/<db>/documents<parent>/<collection>/<doc>` into
// its parent path, collection id and document id.
var documentPathRegex = regexp.MustCompile(`.*?/.*?/documents(.*)/([^/].*?)/([^/].*?)$`)

// DocumentPath locates one document: an optional parent path (with a leading
// "/" when present), the collection id and the document id.
type DocumentPath struct {
	Parent       string
	CollectionID string
	DocumentID   string
}

// ParseDocumentPath parses an absolute resource name as returned by the
// server. Malformed names yield a *ValidationError.
func ParseDocumentPath(name string) (DocumentPath, error) {
	m := documentPathRegex.FindStringSubmatch(name)
	if m == nil {
		return DocumentPath{}, validationErrorf("invalid document path %q", name)
	}
	return DocumentPath{Parent: m[1], CollectionID: m[2], DocumentID: m[3]}, nil
}

// String renders the path relative to the database root, e.g.
// "/coll/doc" or "/coll/doc/sub/doc2".
func (p DocumentPath) String() string {
	return fmt.Sprintf("%s/%s/%s", p.Parent, p.CollectionID, p.DocumentID)
}

// DocPath assembles a relative document path from its parts. An empty parent
// means a top-level collection.
func DocPath(parent, collectionID, documentID string) string {
	return fmt.Sprintf("%s/%s/%s", parent, collectionID, documentID)
}

// validatePartialPath checks a database-relative path: non-empty, leading
// "/", and not containing the "/documents" prefix that only absolute
// resource names carry.
func validatePartialPath(path string) error {
	if path == "" {
		return validationErrorf("empty document path")
	}
	if !strings.HasPrefix(path, "/") {
		return validationErrorf("document path must start with '/': %q", path)
	}
	if strings.Contains(path, "/documents") {
		return validationErrorf("document path must not contain '/documents': %q", path)
	}
	return nil
}

func validatePartialPaths(paths []string) error {
	for _, p := range paths {
		if err := validatePartialPath(p); err != nil {
			return err
		}
	}
	return nil
}
