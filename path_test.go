package firedoc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDocumentPathTopLevel(t *testing.T) {
	p, err := ParseDocumentPath("projects/p1/databases/(default)/documents/users/u1")
	require.NoError(t, err)
	require.Equal(t, DocumentPath{Parent: "", CollectionID: "users", DocumentID: "u1"}, p)
	require.Equal(t, "/users/u1", p.String())
}

func TestParseDocumentPathNested(t *testing.T) {
	p, err := ParseDocumentPath("projects/p1/databases/(default)/documents/users/u1/orders/o2")
	require.NoError(t, err)
	require.Equal(t, "/users/u1", p.Parent)
	require.Equal(t, "orders", p.CollectionID)
	require.Equal(t, "o2", p.DocumentID)
	require.Equal(t, "/users/u1/orders/o2", p.String())
}

func TestParseDocumentPathMalformed(t *testing.T) {
	for _, name := range []string{
		"",
		"users/u1",
		"projects/p1/databases/(default)",
	} {
		_, err := ParseDocumentPath(name)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "name %q", name)
	}
}

func TestDocPath(t *testing.T) {
	require.Equal(t, "/users/u1", DocPath("", "users", "u1"))
	require.Equal(t, "/users/u1/orders/o2", DocPath("/users/u1", "orders", "o2"))
}

func TestValidatePartialPath(t *testing.T) {
	require.NoError(t, validatePartialPath("/users/u1"))

	for _, p := range []string{
		"",
		"users/u1",
		"/documents/users/u1",
	} {
		err := validatePartialPath(p)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "path %q", p)
	}
}
