package tree

import "github.com/google/uuid"

// IDFunc produces a fresh, globally unique identifier.
type IDFunc func() string

// NewID returns a random UUIDv4 string.
func NewID() string {
	return uuid.NewString()
}

// DefaultComputeScript seeds new computed fields.
const DefaultComputeScript = "// get_field_by_name(\"field_name\")\nreturn \"\""

// NewNode builds a node of the requested kind carrying kind-appropriate
// default props. Container kinds receive an empty child list; tabs receive two
// empty tabs with fresh ids.
func NewNode(kind Kind, newID IDFunc) *Node {
	if newID == nil {
		newID = NewID
	}
	n := &Node{
		ID:         newID(),
		Kind:       kind,
		Props:      DefaultProps(kind),
		Validation: []ValidationRule{},
	}
	switch {
	case kind.HasChildList():
		n.Children = []*Node{}
	case kind == KindTabs:
		n.Tabs = []*Tab{
			{ID: newID(), Label: "Tab 1", Children: []*Node{}},
			{ID: newID(), Label: "Tab 2", Children: []*Node{}},
		}
	}
	return n
}

// NewRow builds an empty row with the default two-column layout.
func NewRow(newID IDFunc) *Node {
	if newID == nil {
		newID = NewID
	}
	return &Node{
		ID:       newID(),
		Kind:     KindRow,
		Props:    Props{PropColumns: float64(2), PropGap: float64(12)},
		Children: []*Node{},
	}
}

// DefaultProps returns the starting configuration for a kind. Values are
// JSON-native.
func DefaultProps(kind Kind) Props {
	base := func(label, placeholder string) Props {
		return Props{
			PropLabel:     label,
			"placeholder": placeholder,
			PropRequired:  false,
			"disabled":    false,
		}
	}

	switch kind {
	case KindInput:
		return base("Text Input", "Enter text...")
	case KindTextarea:
		return base("Text Area", "Enter long text...")
	case KindSelect:
		p := base("Select", "")
		p[PropOptions] = EncodeOptions([]Option{
			{Label: "Option 1", Value: "option1"},
			{Label: "Option 2", Value: "option2"},
		})
		return p
	case KindCheckbox:
		p := base("Checkbox", "")
		p["text"] = "Check this option"
		return p
	case KindRadio:
		p := base("Radio Group", "")
		p[PropOptions] = EncodeOptions([]Option{
			{Label: "Option A", Value: "a"},
			{Label: "Option B", Value: "b"},
		})
		return p
	case KindDate:
		return base("Date Picker", "")
	case KindTime:
		return base("Time Picker", "")
	case KindNumber:
		return base("Number Input", "Enter number...")
	case KindEmail:
		return base("Email", "Enter email...")
	case KindPassword:
		return base("Password", "Enter password...")
	case KindFile:
		return base("File Upload", "")
	case KindPicture:
		return base("Picture", "")
	case KindComputed:
		p := base("Computed Field", "")
		p[PropComputeScript] = DefaultComputeScript
		return p
	case KindButton:
		return Props{"buttonText": "Submit", "buttonType": "submit"}
	case KindHeading:
		return Props{"text": "Heading", "headingLevel": float64(2)}
	case KindParagraph:
		return Props{"text": "This is a paragraph of text."}
	case KindDivider:
		return Props{}
	case KindContainer:
		return Props{"direction": "column", PropGap: float64(16)}
	case KindRow:
		return Props{PropColumns: float64(2), PropGap: float64(12)}
	case KindGrid:
		return Props{
			PropLabel: "Data Grid",
			"gridColumns": []any{
				map[string]any{"id": "col1", "label": "Column 1", "type": "text"},
				map[string]any{"id": "col2", "label": "Column 2", "type": "text"},
			},
			"minRows": float64(0),
			"maxRows": float64(10),
		}
	case KindTabs:
		return Props{}
	default:
		return base("", "")
	}
}
