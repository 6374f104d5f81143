package scrapetmpl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// FieldType is the declared type tag of a schema field.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeText     FieldType = "text"
	TypeHTML     FieldType = "html"
	TypeMarkdown FieldType = "markdown"
	TypeDate     FieldType = "date"
	TypeDatetime FieldType = "datetime"
	TypeURL      FieldType = "url"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeString, TypeText, TypeHTML, TypeMarkdown, TypeDate, TypeDatetime, TypeURL:
		return true
	}
	return false
}

var fieldNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Field is a single named, typed entry of a Schema.
type Field struct {
	Name string
	Type FieldType
}

// Schema is the ordered list of fields a template extracts.
type Schema []Field

// DefaultSchema is used when training without an explicit schema.
var DefaultSchema = Schema{
	{Name: "title", Type: TypeString},
	{Name: "author", Type: TypeString},
	{Name: "date", Type: TypeDate},
	{Name: "content", Type: TypeHTML},
}

// Validate returns an error if the schema is empty, has duplicate or
// malformed names, or uses an unknown type.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return Errorf(EINVALID, "schema must have at least one field")
	}
	seen := make(map[string]bool, len(s))
	for _, f := range s {
		if !fieldNameRe.MatchString(f.Name) {
			return Errorf(EINVALID, "invalid field name %q", f.Name)
		}
		if seen[f.Name] {
			return Errorf(EINVALID, "duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
		if !f.Type.Valid() {
			return Errorf(EINVALID, "invalid type %q for field %q", f.Type, f.Name)
		}
	}
	return nil
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the schema declares a field with the given name.
func (s Schema) Has(name string) bool {
	for _, f := range s {
		if f.Name == name {
			return true
		}
	}
	return false
}

// String renders the schema as a JSON object in field order.
func (s Schema) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, f := range s {
		if i > 0 {
			sb.WriteString(", ")
		}
		name, _ := json.Marshal(f.Name)
		typ, _ := json.Marshal(string(f.Type))
		sb.Write(name)
		sb.WriteString(": ")
		sb.Write(typ)
	}
	sb.WriteString("}")
	return sb.String()
}

// ParseSchema decodes a JSON object of field name to type, keeping the
// order in which fields appear, and validates the result.
func ParseSchema(data string) (Schema, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	tok, err := dec.Token()
	if err != nil {
		return nil, Errorf(EINVALID, "invalid schema JSON: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, Errorf(EINVALID, "schema must be a JSON object")
	}

	var schema Schema
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, Errorf(EINVALID, "invalid schema JSON: %v", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, Errorf(EINVALID, "schema keys must be strings")
		}
		var typ string
		if err := dec.Decode(&typ); err != nil {
			return nil, Errorf(EINVALID, "type of field %q must be a string", key)
		}
		schema = append(schema, Field{Name: key, Type: FieldType(typ)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, Errorf(EINVALID, "invalid schema JSON: %v", err)
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}

// SchemaFromSelectors builds a string-typed schema from the keys of a
// selector map, in sorted order.
func SchemaFromSelectors(m SelectorMap) Schema {
	names := m.Fields()
	s := make(Schema, len(names))
	for i, n := range names {
		s[i] = Field{Name: n, Type: TypeString}
	}
	return s
}

// MustParseSchema is like ParseSchema but panics on error. Intended for
// package-level defaults and tests.
func MustParseSchema(data string) Schema {
	s, err := ParseSchema(data)
	if err != nil {
		panic(fmt.Sprintf("scrapetmpl: %s", ErrorMessage(err)))
	}
	return s
}
