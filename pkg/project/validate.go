package project

import (
	"maps"
	"slices"

	"github.com/matzehuels/panecraft/pkg/design"
	perrors "github.com/matzehuels/panecraft/pkg/errors"
)

// ValidateDesign checks the tree structure and the user-facing limits on
// widget text and colors.
func ValidateDesign(s design.Snapshot) error {
	if err := s.Validate(); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidDesign, err, "invalid design")
	}
	for _, id := range slices.Sorted(maps.Keys(s.Nodes)) {
		n := s.Nodes[id]
		if !n.IsWidget() {
			continue
		}
		if err := validateData(n.Data); err != nil {
			return perrors.Wrap(perrors.GetCode(err), err, "widget %s", id)
		}
	}
	return nil
}

// ValidateProps applies the same limits to a property update.
func ValidateProps(p design.Props) error {
	if err := p.Validate(); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid properties")
	}
	for _, s := range []*string{p.Title, p.Label, p.Placeholder} {
		if s != nil {
			if err := perrors.ValidateWidgetTitle(*s); err != nil {
				return err
			}
		}
	}
	if p.Content != nil {
		if err := perrors.ValidateWidgetText(*p.Content); err != nil {
			return err
		}
	}
	for _, c := range []*string{p.BorderColor, p.TextColor, p.BackgroundColor} {
		if c != nil {
			if err := perrors.ValidateHexColor(*c); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateNode checks a node template before it is added to a tree.
func ValidateNode(n design.Node) error {
	if !n.IsWidget() || n.Data == nil {
		return nil
	}
	return validateData(n.Data)
}

func validateData(d design.WidgetData) error {
	var texts []string
	switch d := d.(type) {
	case design.ParagraphData:
		texts = []string{d.Title}
		if err := perrors.ValidateWidgetText(d.Content); err != nil {
			return err
		}
	case design.ListData:
		texts = []string{d.Title}
	case design.TableData:
		texts = []string{d.Title}
	case design.BlockData:
		texts = []string{d.Title}
	case design.InputData:
		texts = []string{d.Label, d.Placeholder}
	default:
		return perrors.New(perrors.ErrCodeInvalidDesign, "unknown widget data %T", d)
	}
	for _, t := range texts {
		if err := perrors.ValidateWidgetTitle(t); err != nil {
			return err
		}
	}
	st := d.Styling()
	for _, c := range []string{st.BorderColor, st.TextColor, st.BackgroundColor} {
		if err := perrors.ValidateHexColor(c); err != nil {
			return err
		}
	}
	return nil
}
