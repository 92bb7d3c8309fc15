package domain

import (
	"errors"
	"fmt"
	"strings"
)

type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldNumber   FieldKind = "number"
	FieldDate     FieldKind = "date"
	FieldTextarea FieldKind = "textarea"
	FieldTel      FieldKind = "tel"
	FieldEmail    FieldKind = "email"
)

// InputField describes one form field the client must collect before
// finalization. Name is a stable machine key contracted with the client UI.
type InputField struct {
	Name        string    `json:"name"`
	Kind        FieldKind `json:"type"`
	Placeholder string    `json:"placeholder"`
	Prefix      string    `json:"prefix,omitempty"`
}

type InputSection struct {
	Label  string       `json:"label"`
	Fields []InputField `json:"fields"`
}

// DraftResult is the validated shape of the model's draft response.
type DraftResult struct {
	Title          string         `json:"quoteTitle"`
	Body           string         `json:"pdfContent"`
	Message        string         `json:"shortMessage"`
	RequiredInputs []InputSection `json:"requiredInputs"`
}

// Field names the client UI depends on. These must never vary.
var (
	billToFields       = []string{"client_name", "contact_number", "email_address"}
	quoteDetailsFields = []string{"quote_number", "quote_date", "due_date"}
)

var validFieldKinds = map[FieldKind]bool{
	FieldText: true, FieldNumber: true, FieldDate: true,
	FieldTextarea: true, FieldTel: true, FieldEmail: true,
}

// Validate enforces the draft contract: non-empty title/body and the two
// mandatory input sections. Sections that exist but miss mandatory field
// names are repaired in place rather than rejected; a missing section is
// appended. Unknown field kinds degrade to text.
func (d *DraftResult) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return WrapError(ErrGeneration, "validate draft", errors.New("empty quote title"))
	}
	if strings.TrimSpace(d.Body) == "" {
		return WrapError(ErrGeneration, "validate draft", errors.New("empty draft body"))
	}

	for si := range d.RequiredInputs {
		for fi := range d.RequiredInputs[si].Fields {
			if !validFieldKinds[d.RequiredInputs[si].Fields[fi].Kind] {
				d.RequiredInputs[si].Fields[fi].Kind = FieldText
			}
		}
	}

	d.repairSection("Bill To", billToFields, map[string]InputField{
		"client_name":    {Name: "client_name", Kind: FieldText, Placeholder: "Client Name"},
		"contact_number": {Name: "contact_number", Kind: FieldTel, Placeholder: "Phone Number"},
		"email_address":  {Name: "email_address", Kind: FieldEmail, Placeholder: "Email Address"},
	})
	d.repairSection("Quote Details", quoteDetailsFields, map[string]InputField{
		"quote_number": {Name: "quote_number", Kind: FieldText, Placeholder: "Quote Number"},
		"quote_date":   {Name: "quote_date", Kind: FieldDate, Placeholder: "Quote Date"},
		"due_date":     {Name: "due_date", Kind: FieldDate, Placeholder: "Due Date"},
	})
	return nil
}

func (d *DraftResult) repairSection(label string, required []string, defaults map[string]InputField) {
	idx := -1
	for i, section := range d.RequiredInputs {
		if strings.EqualFold(strings.TrimSpace(section.Label), label) {
			idx = i
			break
		}
	}
	if idx < 0 {
		d.RequiredInputs = append(d.RequiredInputs, InputSection{Label: label})
		idx = len(d.RequiredInputs) - 1
	}

	have := make(map[string]bool, len(d.RequiredInputs[idx].Fields))
	for _, f := range d.RequiredInputs[idx].Fields {
		have[f.Name] = true
	}
	for _, name := range required {
		if !have[name] {
			d.RequiredInputs[idx].Fields = append(d.RequiredInputs[idx].Fields, defaults[name])
		}
	}
}

// Section returns the input section with the given label, if present.
func (d *DraftResult) Section(label string) (InputSection, bool) {
	for _, section := range d.RequiredInputs {
		if strings.EqualFold(strings.TrimSpace(section.Label), label) {
			return section, true
		}
	}
	return InputSection{}, false
}

func (d *DraftResult) String() string {
	return fmt.Sprintf("DraftResult(%q, %d input sections)", d.Title, len(d.RequiredInputs))
}
