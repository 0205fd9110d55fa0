package fhir

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	dErrors "scribed/internal/domainerrors"
	"scribed/internal/platform/config"
)

func TestNewClinicalNoteDocumentEncodesNote(t *testing.T) {
	doc := NewClinicalNoteDocument("Note clinique finale.", "Patient/123", "Encounter/77")

	require.Equal(t, "DocumentReference", doc.ResourceType)
	require.Equal(t, "current", doc.Status)
	require.Equal(t, "Patient/123", doc.Subject.Reference)
	require.Equal(t, "Encounter/77", doc.Context.Encounter[0].Reference)
	require.Len(t, doc.Content, 1)

	decoded, err := hex.DecodeString(doc.Content[0].Attachment.Data)
	require.NoError(t, err)
	require.Equal(t, "Note clinique finale.", string(decoded))
}

func TestNewClinicalNoteDocumentOmitsMissingReferences(t *testing.T) {
	doc := NewClinicalNoteDocument("note", "", "")
	require.Nil(t, doc.Subject)
	require.Nil(t, doc.Context)
}

func TestCreateResourcePostsToTypedPath(t *testing.T) {
	var gotPath, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": "doc-1", "resourceType": "DocumentReference"})
	}))
	defer srv.Close()

	client := NewClient(config.FHIRConfig{BaseURL: srv.URL + "/", Token: "tok"})
	created, err := client.CreateResource(context.Background(), "DocumentReference", NewClinicalNoteDocument("note", "", ""))
	require.NoError(t, err)
	require.Equal(t, "/DocumentReference", gotPath)
	require.Equal(t, "application/fhir+json", gotContentType)
	require.Equal(t, "doc-1", created["id"])
}

func TestCreateResourceReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(config.FHIRConfig{BaseURL: srv.URL})
	_, err := client.CreateResource(context.Background(), "DocumentReference", map[string]string{})
	require.True(t, dErrors.HasCode(err, dErrors.CodeCollaborator))
}

func TestDisabledClient(t *testing.T) {
	client := NewClient(config.FHIRConfig{})
	require.False(t, client.Enabled())
	_, err := client.CreateResource(context.Background(), "DocumentReference", nil)
	require.True(t, dErrors.HasCode(err, dErrors.CodeCollaborator))
}
