package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/gowebpki/jcs"

	"cortexmap/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	return v
}

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// ValidateText accepts any string, empty included, as long as it is valid UTF-8.
// Free-form fields are stored verbatim and JSON cannot carry other bytes.
func ValidateText(fieldName, value string) error {
	if !utf8.ValidString(value) {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is not valid UTF-8", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "agentID" -> "agent ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"agentID":  "agent ID",
		"commitID": "commit ID",
		"message":  "message",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateGraphState checks a client-submitted state before it reaches the
// store: ids present, roles known, ids unique per kind, strings valid UTF-8,
// metadata valid JSON with an RFC 8785 canonical form.
func ValidateGraphState(state domain.GraphState) error {
	if err := ValidateGraphShape(state); err != nil {
		return err
	}

	for i, n := range state.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if err := validateStrings(field,
			textField{"id", &n.ID},
			textField{"text", &n.Text},
			textField{"parent_id", n.ParentID},
		); err != nil {
			return err
		}
		if err := validateMetadata(field+".metadata", n.Metadata); err != nil {
			return err
		}
	}

	for i, e := range state.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		if err := validateStrings(field,
			textField{"id", &e.ID},
			textField{"source", &e.Source},
			textField{"target", &e.Target},
			textField{"edge_type", &e.EdgeType},
		); err != nil {
			return err
		}
		if err := validateMetadata(field+".metadata", e.Metadata); err != nil {
			return err
		}
	}

	return nil
}

// ValidateGraphShape is the structural subset of ValidateGraphState: ids
// present, roles known, ids unique per kind. Decoding stored snapshots uses
// it so rows written before the stricter content rules stay readable.
func ValidateGraphShape(state domain.GraphState) error {
	if err := validate.Struct(state); err != nil {
		return fromValidatorError(err)
	}

	seen := make(map[string]struct{}, len(state.Nodes))
	for i, n := range state.Nodes {
		if _, dup := seen[n.ID]; dup {
			return &ValidationError{Field: fmt.Sprintf("nodes[%d].id", i), Message: fmt.Sprintf("duplicate node id %q", n.ID)}
		}
		seen[n.ID] = struct{}{}
	}

	seen = make(map[string]struct{}, len(state.Edges))
	for i, e := range state.Edges {
		if _, dup := seen[e.ID]; dup {
			return &ValidationError{Field: fmt.Sprintf("edges[%d].id", i), Message: fmt.Sprintf("duplicate edge id %q", e.ID)}
		}
		seen[e.ID] = struct{}{}
	}

	return nil
}

type textField struct {
	name  string
	value *string
}

func validateStrings(prefix string, fields ...textField) error {
	for _, f := range fields {
		if f.value != nil && !utf8.ValidString(*f.value) {
			return &ValidationError{Field: prefix + "." + f.name, Message: f.name + " is not valid UTF-8"}
		}
	}
	return nil
}

// validateMetadata rejects payloads the snapshot checksum cannot
// canonicalize: out-of-range numbers, duplicate keys, lone surrogates.
func validateMetadata(field string, m domain.Metadata) error {
	if len(m) == 0 {
		return nil
	}
	if !utf8.Valid(m) {
		return &ValidationError{Field: field, Message: "metadata is not valid UTF-8"}
	}
	if !json.Valid(m) {
		return &ValidationError{Field: field, Message: "metadata is not valid JSON"}
	}
	if _, err := jcs.Transform(m); err != nil {
		return &ValidationError{Field: field, Message: fmt.Sprintf("metadata has no canonical JSON form: %v", err)}
	}
	return nil
}

// fromValidatorError turns the first validator failure into a ValidationError
func fromValidatorError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "state", Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "GraphState.")
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s is required", fe.Field())}
	case "role":
		return &ValidationError{Field: field, Message: fmt.Sprintf("unknown role %q (expected one of %s)", fe.Value(), roleList())}
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s is invalid", fe.Field())}
	}
}

func roleList() string {
	names := make([]string, len(domain.Roles))
	for i, r := range domain.Roles {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}
