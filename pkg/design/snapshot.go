package design

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
)

// Snapshot is the persisted form of a tree.
type Snapshot struct {
	RootID string           `json:"rootId"`
	Nodes  map[string]*Node `json:"nodes"`
}

// Snapshot returns a deep copy of the tree.
func (t *Tree) Snapshot() Snapshot {
	nodes := make(map[string]*Node, len(t.nodes))
	for id, n := range t.nodes {
		nodes[id] = n.clone()
	}
	return Snapshot{RootID: t.rootID, Nodes: nodes}
}

// Load builds a tree from a snapshot. The snapshot is copied, so later changes
// to s do not affect the tree. Load checks the structural invariants and the
// constraint ranges, but tolerates percentage sets that do not sum to 100.
func Load(s Snapshot, opts ...Option) (*Tree, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	t := newTree(opts)
	for id, n := range s.Nodes {
		c := n.clone()
		c.ID = id
		t.nodes[id] = c
	}
	t.rootID = s.RootID
	return t, nil
}

// Validate checks that s describes a single tree rooted at a layout.
func (s Snapshot) Validate() error {
	root, ok := s.Nodes[s.RootID]
	if !ok || root == nil {
		return fmt.Errorf("%w: root %q not found", ErrInvalidSnapshot, s.RootID)
	}
	if !root.IsLayout() {
		return fmt.Errorf("%w: root %q is not a layout", ErrInvalidSnapshot, s.RootID)
	}

	owner := make(map[string]string, len(s.Nodes))
	for _, id := range slices.Sorted(maps.Keys(s.Nodes)) {
		n := s.Nodes[id]
		if n == nil {
			return fmt.Errorf("%w: node %q is null", ErrInvalidSnapshot, id)
		}
		if n.ID != "" && n.ID != id {
			return fmt.Errorf("%w: node key %q holds id %q", ErrInvalidSnapshot, id, n.ID)
		}
		switch n.Type {
		case TypeWidget:
			if n.Data == nil {
				return fmt.Errorf("%w: widget %q has no data", ErrInvalidSnapshot, id)
			}
			continue
		case TypeLayout:
		default:
			return fmt.Errorf("%w: node %q has unknown type %q", ErrInvalidSnapshot, id, n.Type)
		}
		if !n.Direction.Valid() {
			return fmt.Errorf("%w: layout %q has unknown direction %q", ErrInvalidSnapshot, id, n.Direction)
		}
		if len(n.Children) != len(n.Constraints) {
			return fmt.Errorf("%w: layout %q has %d children and %d constraints",
				ErrInvalidSnapshot, id, len(n.Children), len(n.Constraints))
		}
		for i, c := range n.Constraints {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("%w: layout %q slot %d: %v", ErrInvalidSnapshot, id, i, err)
			}
		}
		for _, child := range n.Children {
			if _, ok := s.Nodes[child]; !ok {
				return fmt.Errorf("%w: layout %q references missing node %q", ErrInvalidSnapshot, id, child)
			}
			if prev, dup := owner[child]; dup {
				return fmt.Errorf("%w: node %q appears under both %q and %q", ErrInvalidSnapshot, child, prev, id)
			}
			owner[child] = id
		}
	}
	if p, ok := owner[s.RootID]; ok {
		return fmt.Errorf("%w: root %q is a child of %q", ErrInvalidSnapshot, s.RootID, p)
	}

	// Every node must hang off the root; with single ownership this also rules
	// out cycles.
	reached := map[string]bool{}
	stack := []string{s.RootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[id] {
			return fmt.Errorf("%w: cycle through %q", ErrInvalidSnapshot, id)
		}
		reached[id] = true
		stack = append(stack, s.Nodes[id].Children...)
	}
	if len(reached) != len(s.Nodes) {
		for _, id := range slices.Sorted(maps.Keys(s.Nodes)) {
			if !reached[id] {
				return fmt.Errorf("%w: node %q is not reachable from the root", ErrInvalidSnapshot, id)
			}
		}
	}
	return nil
}

// ReadJSON decodes and validates a snapshot.
func ReadJSON(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode design: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// WriteJSON encodes a snapshot as indented JSON.
func WriteJSON(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

type layoutJSON struct {
	ID          string       `json:"id"`
	Type        NodeType     `json:"type"`
	Direction   Direction    `json:"direction"`
	Children    []string     `json:"children"`
	Constraints []Constraint `json:"constraints"`
}

type widgetJSON struct {
	ID         string     `json:"id"`
	Type       NodeType   `json:"type"`
	WidgetType WidgetType `json:"widgetType"`
	Data       dataJSON   `json:"data"`
}

type dataJSON struct {
	Title           string      `json:"title,omitempty"`
	Content         string      `json:"content,omitempty"`
	Items           []string    `json:"items,omitempty"`
	Headers         []string    `json:"headers,omitempty"`
	Rows            [][]string  `json:"rows,omitempty"`
	Placeholder     string      `json:"placeholder,omitempty"`
	Label           string      `json:"label,omitempty"`
	BorderStyle     BorderStyle `json:"borderStyle,omitempty"`
	BorderColor     string      `json:"borderColor,omitempty"`
	TextColor       string      `json:"textColor,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
}

// MarshalJSON encodes a node in its variant's wire shape.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.IsLayout() {
		return json.Marshal(layoutJSON{
			ID:          n.ID,
			Type:        TypeLayout,
			Direction:   n.Direction,
			Children:    nonNil(n.Children),
			Constraints: nonNil(n.Constraints),
		})
	}
	w := widgetJSON{ID: n.ID, Type: TypeWidget}
	if n.Data != nil {
		w.WidgetType = n.Data.WidgetType()
		w.Data = toDataJSON(n.Data)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes either wire shape.
func (n *Node) UnmarshalJSON(b []byte) error {
	var head struct {
		Type NodeType `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	switch head.Type {
	case TypeLayout:
		var l layoutJSON
		if err := json.Unmarshal(b, &l); err != nil {
			return err
		}
		*n = Node{ID: l.ID, Type: TypeLayout, Direction: l.Direction, Children: l.Children, Constraints: l.Constraints}
		return nil
	case TypeWidget:
		var w widgetJSON
		if err := json.Unmarshal(b, &w); err != nil {
			return err
		}
		data, err := fromDataJSON(w.WidgetType, w.Data)
		if err != nil {
			return err
		}
		*n = Node{ID: w.ID, Type: TypeWidget, Data: data}
		return nil
	}
	return fmt.Errorf("%w: unknown node type %q", ErrInvalidSnapshot, head.Type)
}

func toDataJSON(d WidgetData) dataJSON {
	s := d.Styling()
	out := dataJSON{
		BorderStyle:     s.BorderStyle,
		BorderColor:     s.BorderColor,
		TextColor:       s.TextColor,
		BackgroundColor: s.BackgroundColor,
	}
	switch d := d.(type) {
	case ParagraphData:
		out.Title, out.Content = d.Title, d.Content
	case ListData:
		out.Title, out.Items = d.Title, d.Items
	case TableData:
		out.Title, out.Headers, out.Rows = d.Title, d.Headers, d.Rows
	case BlockData:
		out.Title = d.Title
	case InputData:
		out.Label, out.Placeholder = d.Label, d.Placeholder
	}
	return out
}

func fromDataJSON(t WidgetType, d dataJSON) (WidgetData, error) {
	if !d.BorderStyle.Valid() {
		return nil, fmt.Errorf("%w: unknown border style %q", ErrInvalidSnapshot, d.BorderStyle)
	}
	s := Style{
		BorderStyle:     d.BorderStyle,
		BorderColor:     d.BorderColor,
		TextColor:       d.TextColor,
		BackgroundColor: d.BackgroundColor,
	}
	switch t {
	case Paragraph:
		return ParagraphData{Title: d.Title, Content: d.Content, Style: s}, nil
	case List:
		return ListData{Title: d.Title, Items: d.Items, Style: s}, nil
	case Table:
		return TableData{Title: d.Title, Headers: d.Headers, Rows: d.Rows, Style: s}, nil
	case Block:
		return BlockData{Title: d.Title, Style: s}, nil
	case Input:
		return InputData{Label: d.Label, Placeholder: d.Placeholder, Style: s}, nil
	}
	return nil, fmt.Errorf("%w: unknown widget type %q", ErrInvalidSnapshot, t)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
