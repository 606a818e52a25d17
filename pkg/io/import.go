package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/panecraft/pkg/design"
)

// Document is a design file.
type Document struct {
	Name      string `json:"name,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	design.Snapshot
}

// ReadJSON decodes a document from r and validates its tree.
//
// ReadJSON returns an error if the JSON is malformed, if a node has an
// unknown type, or if the nodes do not form a single tree rooted at a
// layout. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ImportJSON reads the document at path.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
