// Package validation checks generator form fields before they are encoded.
// Each field constraint is compiled to its own JSON Schema so that failures
// are reported per field with a message a user can act on.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"back_scan/internal/models"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBase = "https://back-scan.local/schemas/forms/"

// FieldError is a single failed check, keyed by field name
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the error form of a failed validation
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ByField groups messages by field name
func (e Errors) ByField() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

type compiledConstraint struct {
	schema  *jsonschema.Schema
	message string
}

type compiledField struct {
	rule        FieldRule
	kind        *jsonschema.Schema
	constraints []compiledConstraint
}

// Validator holds the compiled schemas for every form type
type Validator struct {
	forms map[models.FormType][]compiledField
}

// New compiles Rules
func New() (*Validator, error) {
	return NewWithRules(Rules)
}

// NewWithRules compiles an arbitrary rule table
func NewWithRules(rules map[models.FormType][]FieldRule) (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true

	v := &Validator{forms: make(map[models.FormType][]compiledField, len(rules))}
	for formType, fields := range rules {
		compiled := make([]compiledField, 0, len(fields))
		for _, rule := range fields {
			base := schemaBase + string(formType) + "/" + rule.Name
			kind, err := compile(c, base+"/type.json", map[string]any{"type": string(rule.Kind)})
			if err != nil {
				return nil, fmt.Errorf("failed to compile %s.%s: %w", formType, rule.Name, err)
			}
			cf := compiledField{rule: rule, kind: kind}
			for i, constraint := range rule.Constraints {
				doc := map[string]any{"type": string(rule.Kind)}
				for k, val := range constraint.Keywords {
					doc[k] = val
				}
				schema, err := compile(c, fmt.Sprintf("%s/%d.json", base, i), doc)
				if err != nil {
					return nil, fmt.Errorf("failed to compile %s.%s: %w", formType, rule.Name, err)
				}
				cf.constraints = append(cf.constraints, compiledConstraint{schema: schema, message: constraint.Message})
			}
			compiled = append(compiled, cf)
		}
		v.forms[formType] = compiled
	}
	return v, nil
}

func compile(c *jsonschema.Compiler, url string, doc map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

// Supports reports whether formType has a rule table
func (v *Validator) Supports(formType models.FormType) bool {
	_, ok := v.forms[formType]
	return ok
}

// Validate checks fields against the rules for formType and returns every
// failure in rule order. An empty result means the form is valid. Fields not
// named by any rule are ignored.
func (v *Validator) Validate(formType models.FormType, fields map[string]any) []FieldError {
	compiled, ok := v.forms[formType]
	if !ok {
		return []FieldError{{Field: "type", Message: fmt.Sprintf("unsupported code type %q", formType)}}
	}

	var errs []FieldError
	for _, cf := range compiled {
		value, present := lookup(fields, cf.rule.Name)
		if !present {
			if cf.rule.Required {
				errs = append(errs, FieldError{Field: cf.rule.Name, Message: "is required"})
			}
			continue
		}
		value = normalize(value)
		if err := cf.kind.Validate(value); err != nil {
			errs = append(errs, FieldError{Field: cf.rule.Name, Message: "must be a " + string(cf.rule.Kind)})
			continue
		}
		for _, constraint := range cf.constraints {
			if err := constraint.schema.Validate(value); err != nil {
				errs = append(errs, FieldError{Field: cf.rule.Name, Message: constraint.message})
			}
		}
	}
	return errs
}

// Check is Validate returning an Errors value, or nil when the form is valid
func (v *Validator) Check(formType models.FormType, fields map[string]any) error {
	if errs := v.Validate(formType, fields); len(errs) > 0 {
		return Errors(errs)
	}
	return nil
}

// Blank reports whether a field value counts as absent: nil or a string of
// only whitespace
func Blank(value any) bool {
	if value == nil {
		return true
	}
	s, isString := value.(string)
	return isString && strings.TrimSpace(s) == ""
}

// Present returns a copy of fields without its blank values. Encoders must
// see the same fields the rules were checked against.
func Present(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		if !Blank(value) {
			out[name] = value
		}
	}
	return out
}

func lookup(fields map[string]any, name string) (any, bool) {
	value, ok := fields[name]
	if !ok || Blank(value) {
		return nil, false
	}
	return value, true
}

// normalize converts Go numeric types into the float64 the schema validator expects
func normalize(value any) any {
	switch n := value.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	}
	return value
}
