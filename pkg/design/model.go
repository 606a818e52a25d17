package design

import (
	"fmt"
	"slices"
)

// NodeType distinguishes the two node variants.
type NodeType string

const (
	TypeLayout NodeType = "Layout"
	TypeWidget NodeType = "Widget"
)

// Direction is the axis along which a layout splits its area.
type Direction string

const (
	Vertical   Direction = "Vertical"
	Horizontal Direction = "Horizontal"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool { return d == Vertical || d == Horizontal }

// WidgetType names the kind of content a widget renders.
type WidgetType string

const (
	Paragraph WidgetType = "Paragraph"
	List      WidgetType = "List"
	Table     WidgetType = "Table"
	Block     WidgetType = "Block"
	Input     WidgetType = "Input"
)

// WidgetTypes lists every widget type in display order.
var WidgetTypes = []WidgetType{Paragraph, List, Table, Block, Input}

// Valid reports whether w is a known widget type.
func (w WidgetType) Valid() bool { return slices.Contains(WidgetTypes, w) }

// BorderStyle selects the border drawn around a widget.
type BorderStyle string

const (
	BorderNone    BorderStyle = "None"
	BorderPlain   BorderStyle = "Plain"
	BorderRounded BorderStyle = "Rounded"
	BorderDouble  BorderStyle = "Double"
)

// Valid reports whether b is a known border style. The empty style is valid
// and means "not set".
func (b BorderStyle) Valid() bool {
	switch b {
	case "", BorderNone, BorderPlain, BorderRounded, BorderDouble:
		return true
	}
	return false
}

// Bordered reports whether a border should be drawn.
func (b BorderStyle) Bordered() bool { return b != "" && b != BorderNone }

// ConstraintKind is the sizing rule of a constraint.
type ConstraintKind string

const (
	KindPercentage ConstraintKind = "Percentage"
	KindLength     ConstraintKind = "Length"
	KindMin        ConstraintKind = "Min"
	KindMax        ConstraintKind = "Max"
)

// Valid reports whether k is a known constraint kind.
func (k ConstraintKind) Valid() bool {
	switch k {
	case KindPercentage, KindLength, KindMin, KindMax:
		return true
	}
	return false
}

// Constraint sizes one child slot of a layout. Percentage values are shares of
// the parent area in [0, 100]; Length, Min and Max are absolute cell counts.
type Constraint struct {
	Kind  ConstraintKind `json:"type"`
	Value int            `json:"value"`
}

// Percentage returns a percentage constraint.
func Percentage(v int) Constraint { return Constraint{Kind: KindPercentage, Value: v} }

// Length returns a fixed-length constraint.
func Length(v int) Constraint { return Constraint{Kind: KindLength, Value: v} }

// Min returns a minimum-size constraint.
func Min(v int) Constraint { return Constraint{Kind: KindMin, Value: v} }

// Max returns a maximum-size constraint.
func Max(v int) Constraint { return Constraint{Kind: KindMax, Value: v} }

// IsPercentage reports whether c is a percentage constraint.
func (c Constraint) IsPercentage() bool { return c.Kind == KindPercentage }

// Validate checks the kind and value range.
func (c Constraint) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidConstraint, c.Kind)
	}
	if c.Value < 0 {
		return fmt.Errorf("%w: %s value %d is negative", ErrInvalidConstraint, c.Kind, c.Value)
	}
	if c.Kind == KindPercentage && c.Value > 100 {
		return fmt.Errorf("%w: percentage %d exceeds 100", ErrInvalidConstraint, c.Value)
	}
	return nil
}

func (c Constraint) String() string { return fmt.Sprintf("%s(%d)", c.Kind, c.Value) }

// Node is one element of a design tree. Type selects which group of fields is
// meaningful: Direction, Children and Constraints for layouts; Data for
// widgets.
type Node struct {
	ID   string
	Type NodeType

	Direction   Direction
	Children    []string
	Constraints []Constraint

	Data WidgetData
}

// NewLayout returns a layout template with no children.
func NewLayout(dir Direction) Node {
	return Node{Type: TypeLayout, Direction: dir}
}

// NewWidget returns a widget template carrying data.
func NewWidget(data WidgetData) Node {
	return Node{Type: TypeWidget, Data: data}
}

// NewWidgetOfType returns a widget template with empty data of the given type.
func NewWidgetOfType(t WidgetType) (Node, error) {
	data, err := EmptyData(t)
	if err != nil {
		return Node{}, err
	}
	return NewWidget(data), nil
}

// IsLayout reports whether n is a layout node.
func (n *Node) IsLayout() bool { return n.Type == TypeLayout }

// IsWidget reports whether n is a widget node.
func (n *Node) IsWidget() bool { return n.Type == TypeWidget }

// WidgetType returns the widget type, or "" for layouts.
func (n *Node) WidgetType() WidgetType {
	if n.Data == nil {
		return ""
	}
	return n.Data.WidgetType()
}

// Label returns a short human-readable description used by outlines and
// diagrams.
func (n *Node) Label() string {
	if n.IsLayout() {
		return fmt.Sprintf("Layout(%s)", n.Direction)
	}
	if n.Data == nil {
		return "Widget"
	}
	if t := n.Data.Heading(); t != "" {
		return fmt.Sprintf("%s %q", n.Data.WidgetType(), t)
	}
	return string(n.Data.WidgetType())
}

// clone returns a deep copy of n.
func (n *Node) clone() *Node {
	c := *n
	c.Children = slices.Clone(n.Children)
	c.Constraints = slices.Clone(n.Constraints)
	if n.Data != nil {
		c.Data = n.Data.clone()
	}
	return &c
}
