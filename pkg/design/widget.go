package design

import (
	"fmt"
	"slices"
)

// Style holds the presentation fields shared by every widget variant. Colors
// are "#RGB" or "#RRGGBB" strings; empty means "use the default".
type Style struct {
	BorderStyle     BorderStyle
	BorderColor     string
	TextColor       string
	BackgroundColor string
}

// WidgetData is the content of a widget node. The set of implementations is
// closed: ParagraphData, ListData, TableData, BlockData and InputData.
type WidgetData interface {
	// WidgetType returns the widget type this data belongs to.
	WidgetType() WidgetType
	// Styling returns the presentation fields.
	Styling() Style
	// Heading returns the title (or label) shown in a border, if any.
	Heading() string

	clone() WidgetData
	apply(p Props) WidgetData
}

// ParagraphData is the content of a Paragraph widget.
type ParagraphData struct {
	Title   string
	Content string
	Style
}

// ListData is the content of a List widget.
type ListData struct {
	Title string
	Items []string
	Style
}

// TableData is the content of a Table widget.
type TableData struct {
	Title   string
	Headers []string
	Rows    [][]string
	Style
}

// BlockData is the content of a Block widget.
type BlockData struct {
	Title string
	Style
}

// InputData is the content of an Input widget.
type InputData struct {
	Label       string
	Placeholder string
	Style
}

func (ParagraphData) WidgetType() WidgetType { return Paragraph }
func (ListData) WidgetType() WidgetType      { return List }
func (TableData) WidgetType() WidgetType     { return Table }
func (BlockData) WidgetType() WidgetType     { return Block }
func (InputData) WidgetType() WidgetType     { return Input }

func (d ParagraphData) Styling() Style { return d.Style }
func (d ListData) Styling() Style      { return d.Style }
func (d TableData) Styling() Style     { return d.Style }
func (d BlockData) Styling() Style     { return d.Style }
func (d InputData) Styling() Style     { return d.Style }

func (d ParagraphData) Heading() string { return d.Title }
func (d ListData) Heading() string      { return d.Title }
func (d TableData) Heading() string     { return d.Title }
func (d BlockData) Heading() string     { return d.Title }
func (d InputData) Heading() string     { return d.Label }

func (d ParagraphData) clone() WidgetData { return d }
func (d BlockData) clone() WidgetData     { return d }
func (d InputData) clone() WidgetData     { return d }

func (d ListData) clone() WidgetData {
	d.Items = slices.Clone(d.Items)
	return d
}

func (d TableData) clone() WidgetData {
	d.Headers = slices.Clone(d.Headers)
	d.Rows = cloneRows(d.Rows)
	return d
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// EmptyData returns zero-valued data for the given widget type.
func EmptyData(t WidgetType) (WidgetData, error) {
	switch t {
	case Paragraph:
		return ParagraphData{}, nil
	case List:
		return ListData{}, nil
	case Table:
		return TableData{}, nil
	case Block:
		return BlockData{}, nil
	case Input:
		return InputData{}, nil
	}
	return nil, fmt.Errorf("%w: unknown widget type %q", ErrInvalidProps, t)
}

// Props is a partial update for UpdateNodeProps. Nil fields are left
// unchanged; fields that do not belong to the node's variant are ignored.
type Props struct {
	Direction *Direction `json:"direction,omitempty"`

	Title       *string     `json:"title,omitempty"`
	Content     *string     `json:"content,omitempty"`
	Label       *string     `json:"label,omitempty"`
	Placeholder *string     `json:"placeholder,omitempty"`
	Items       *[]string   `json:"items,omitempty"`
	Headers     *[]string   `json:"headers,omitempty"`
	Rows        *[][]string `json:"rows,omitempty"`

	BorderStyle     *BorderStyle `json:"borderStyle,omitempty"`
	BorderColor     *string      `json:"borderColor,omitempty"`
	TextColor       *string      `json:"textColor,omitempty"`
	BackgroundColor *string      `json:"backgroundColor,omitempty"`
}

// Validate checks the enumerated fields.
func (p Props) Validate() error {
	if p.Direction != nil && !p.Direction.Valid() {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidProps, *p.Direction)
	}
	if p.BorderStyle != nil && !p.BorderStyle.Valid() {
		return fmt.Errorf("%w: unknown border style %q", ErrInvalidProps, *p.BorderStyle)
	}
	return nil
}

// Empty reports whether p carries no fields.
func (p Props) Empty() bool { return p == Props{} }

func (s Style) apply(p Props) Style {
	if p.BorderStyle != nil {
		s.BorderStyle = *p.BorderStyle
	}
	if p.BorderColor != nil {
		s.BorderColor = *p.BorderColor
	}
	if p.TextColor != nil {
		s.TextColor = *p.TextColor
	}
	if p.BackgroundColor != nil {
		s.BackgroundColor = *p.BackgroundColor
	}
	return s
}

func (d ParagraphData) apply(p Props) WidgetData {
	setString(&d.Title, p.Title)
	setString(&d.Content, p.Content)
	d.Style = d.Style.apply(p)
	return d
}

func (d ListData) apply(p Props) WidgetData {
	d = d.clone().(ListData)
	setString(&d.Title, p.Title)
	if p.Items != nil {
		d.Items = slices.Clone(*p.Items)
	}
	d.Style = d.Style.apply(p)
	return d
}

func (d TableData) apply(p Props) WidgetData {
	d = d.clone().(TableData)
	setString(&d.Title, p.Title)
	if p.Headers != nil {
		d.Headers = slices.Clone(*p.Headers)
	}
	if p.Rows != nil {
		d.Rows = cloneRows(*p.Rows)
	}
	d.Style = d.Style.apply(p)
	return d
}

func (d BlockData) apply(p Props) WidgetData {
	setString(&d.Title, p.Title)
	d.Style = d.Style.apply(p)
	return d
}

func (d InputData) apply(p Props) WidgetData {
	setString(&d.Label, p.Label)
	setString(&d.Placeholder, p.Placeholder)
	d.Style = d.Style.apply(p)
	return d
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
