// Package fhir posts resources to an EMR's FHIR endpoint. Only the small
// slice of the resource model the pipeline produces is typed here.
package fhir

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	dErrors "scribed/internal/domainerrors"
	"scribed/internal/platform/config"
)

// CodeableText is a coding carried as display text only.
type CodeableText struct {
	Text string `json:"text"`
}

// Reference points at another resource, e.g. "Patient/123".
type Reference struct {
	Reference string `json:"reference"`
}

// Attachment carries inline document content.
type Attachment struct {
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

// Content wraps one attachment of a DocumentReference.
type Content struct {
	Attachment Attachment `json:"attachment"`
}

// DocumentReference is the resource used to file a clinical note.
type DocumentReference struct {
	ResourceType string       `json:"resourceType"`
	Status       string       `json:"status"`
	Type         CodeableText `json:"type"`
	Subject      *Reference   `json:"subject,omitempty"`
	Context      *struct {
		Encounter []Reference `json:"encounter"`
	} `json:"context,omitempty"`
	Content []Content `json:"content"`
}

// NewClinicalNoteDocument builds a current DocumentReference holding the note
// as a hex-encoded plain-text attachment. Patient and encounter references
// are attached when provided.
func NewClinicalNoteDocument(note, patientRef, encounterRef string) DocumentReference {
	doc := DocumentReference{
		ResourceType: "DocumentReference",
		Status:       "current",
		Type:         CodeableText{Text: "Clinical note - sexual health"},
		Content: []Content{{
			Attachment: Attachment{
				ContentType: "text/plain",
				Data:        hex.EncodeToString([]byte(note)),
			},
		}},
	}
	if patientRef != "" {
		doc.Subject = &Reference{Reference: patientRef}
	}
	if encounterRef != "" {
		doc.Context = &struct {
			Encounter []Reference `json:"encounter"`
		}{Encounter: []Reference{{Reference: encounterRef}}}
	}
	return doc
}

// Client posts resources to the FHIR base URL. A client with no base URL is
// disabled; callers check Enabled before use.
type Client struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
}

func NewClient(cfg config.FHIRConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		bearerToken: cfg.Token,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// CreateResource POSTs the resource to <base>/<resourceType> and returns the
// server's representation.
func (c *Client) CreateResource(ctx context.Context, resourceType string, resource any) (map[string]any, error) {
	if !c.Enabled() {
		return nil, dErrors.New(dErrors.CodeCollaborator, "fhir endpoint not configured")
	}

	body, err := json.Marshal(resource)
	if err != nil {
		return nil, fmt.Errorf("marshal fhir resource: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+resourceType, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build fhir request: %w", err)
	}
	req.Header.Set("Content-Type", "application/fhir+json")
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCollaborator, "fhir request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, dErrors.Newf(dErrors.CodeCollaborator, "fhir server returned %d", resp.StatusCode)
	}

	var created map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCollaborator, "decode fhir response")
	}
	return created, nil
}
