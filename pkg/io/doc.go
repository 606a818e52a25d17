// Package io reads and writes design documents, the JSON files the CLI edits.
//
// # Overview
//
// A document is a design snapshot plus a little metadata:
//
//	{
//	  "name": "Dashboard",
//	  "projectId": "4f1c2a9e-0b7d-4c55-9a3e-2d8f5b6c7a10",
//	  "rootId": "root",
//	  "nodes": {
//	    "root": {"id": "root", "type": "Layout", "direction": "Vertical",
//	             "children": ["p1"], "constraints": [{"type": "Percentage", "value": 100}]},
//	    "p1":   {"id": "p1", "type": "Widget", "widgetType": "Paragraph",
//	             "data": {"title": "Hello"}}
//	  }
//	}
//
// The rootId and nodes fields are exactly the snapshot format stored with
// projects, so a project's designData can be saved as a document and read
// back unchanged.
//
// # Fields
//
//   - name: Used as the crate name in Cargo.toml and as the project title
//   - projectId: Set once the document has been pushed to a project store
//   - rootId, nodes: The design tree
//
// # Import
//
// Use [ImportJSON] to read a document from a file path, or [ReadJSON] to read
// from any io.Reader. Both validate the tree structure.
//
//	doc, err := io.ImportJSON("design.json")
//
// # Export
//
// Use [ExportJSON] to write a document to a file, or [WriteJSON] to write to
// any io.Writer. ExportJSON replaces the file atomically, so an interrupted
// write never leaves a truncated document behind.
package io
