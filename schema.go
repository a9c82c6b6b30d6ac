package aientity

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// FieldType is the primitive type tag of a record field.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeBool   FieldType = "bool"
	TypeFloat  FieldType = "float"
)

// ParseFieldType accepts the canonical tags plus a few common aliases.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str", "text":
		return TypeString, nil
	case "int", "integer", "long":
		return TypeInt, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "float", "double", "number":
		return TypeFloat, nil
	}
	return "", fmt.Errorf("%w: unknown field type %q", ErrInvalidSchema, s)
}

// FieldSpec describes one field of a record type.
type FieldSpec struct {
	Name        string    `yaml:"name" json:"name"`
	Type        FieldType `yaml:"type" json:"type"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
}

// SchemaDescriptor is the read-only description of a record type together
// with the model endpoint used to materialize it. It is safe to share between
// goroutines.
type SchemaDescriptor struct {
	typeName    string
	fields      []FieldSpec
	model       string
	endpoint    string
	apiKey      string
	wrapperKeys []string
}

// NewSchemaDescriptor validates fields and binds them to the model settings in cfg.
func NewSchemaDescriptor(typeName string, fields []FieldSpec, cfg Config) (*SchemaDescriptor, error) {
	if strings.TrimSpace(typeName) == "" {
		return nil, fmt.Errorf("%w: type name is empty", ErrInvalidSchema)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s has no fields", ErrInvalidSchema, typeName)
	}
	seen := make(map[string]struct{}, len(fields))
	own := make([]FieldSpec, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field %d of %s has no name", ErrInvalidSchema, i, typeName)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q in %s", ErrInvalidSchema, f.Name, typeName)
		}
		seen[f.Name] = struct{}{}
		ft, err := ParseFieldType(string(f.Type))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		f.Type = ft
		own[i] = f
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model not specified", ErrInvalidSchema)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint not specified", ErrInvalidSchema)
	}
	return &SchemaDescriptor{
		typeName:    typeName,
		fields:      own,
		model:       cfg.Model,
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		wrapperKeys: defaultWrapperKeys(typeName),
	}, nil
}

func (d *SchemaDescriptor) TypeName() string { return d.typeName }
func (d *SchemaDescriptor) Model() string    { return d.model }
func (d *SchemaDescriptor) Endpoint() string { return d.endpoint }
func (d *SchemaDescriptor) APIKey() string   { return d.apiKey }

// Fields returns a copy of the fields in declared order.
func (d *SchemaDescriptor) Fields() []FieldSpec {
	return append([]FieldSpec(nil), d.fields...)
}

// WrapperKeys returns the object keys, in priority order, under which a
// list of records may be wrapped in a model reply.
func (d *SchemaDescriptor) WrapperKeys() []string {
	return append([]string(nil), d.wrapperKeys...)
}

// WithWrapperKeys returns a copy of d that accepts keys instead of the defaults.
func (d *SchemaDescriptor) WithWrapperKeys(keys ...string) *SchemaDescriptor {
	cp := *d
	cp.wrapperKeys = dedupe(keys)
	return &cp
}

// defaultWrapperKeys puts the plural of the record type name ahead of the
// generic "data" and "results" keys, so Person accepts {"persons": [...]}.
func defaultWrapperKeys(typeName string) []string {
	return dedupe([]string{pluralize(lowerFirst(typeName)), "data", "results"})
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func pluralize(s string) string {
	switch {
	case s == "":
		return s
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"),
		strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	case strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsRune("aeiou", rune(s[len(s)-2])):
		return s[:len(s)-1] + "ies"
	}
	return s + "s"
}

func dedupe(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// structSchema is the reflected layout of a struct record type.
type structSchema struct {
	typeName string
	fields   []FieldSpec
	index    map[string][]int // field name → reflect path
}

func schemaOf[T any]() (*structSchema, error) {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: T must be a struct", ErrInvalidSchema)
	}

	s := &structSchema{typeName: rt.Name(), index: map[string][]int{}}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		tag, skip := parseFieldTags(f)
		if skip {
			continue
		}
		ft, err := fieldTypeOf(f.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", rt.Name(), f.Name, err)
		}
		s.fields = append(s.fields, FieldSpec{Name: tag.name, Type: ft, Description: tag.description})
		s.index[tag.name] = f.Index
	}
	return s, nil
}

func fieldTypeOf(t reflect.Type) (FieldType, error) {
	switch t.Kind() {
	case reflect.String:
		return TypeString, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInt, nil
	case reflect.Bool:
		return TypeBool, nil
	case reflect.Float32, reflect.Float64:
		return TypeFloat, nil
	}
	return "", fmt.Errorf("%w: unsupported kind %s", ErrInvalidSchema, t.Kind())
}

// DescriptorOf builds a descriptor for struct type T from its json and ai tags.
func DescriptorOf[T any](cfg Config) (*SchemaDescriptor, error) {
	s, err := schemaOf[T]()
	if err != nil {
		return nil, err
	}
	return NewSchemaDescriptor(s.typeName, s.fields, cfg)
}

// descriptorFile is the on-disk layout read by LoadDescriptor.
type descriptorFile struct {
	Type        string      `yaml:"type"`
	Model       string      `yaml:"model"`
	Endpoint    string      `yaml:"endpoint"`
	APIKey      string      `yaml:"api_key"`
	WrapperKeys []string    `yaml:"wrapper_keys"`
	Fields      []FieldSpec `yaml:"fields"`
}

// LoadDescriptor reads a YAML (or JSON) descriptor file. Model settings
// missing from the file are taken from cfg.
func LoadDescriptor(path string, cfg Config) (*SchemaDescriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor %s: %w", path, err)
	}
	var df descriptorFile
	if err := yaml.Unmarshal(raw, &df); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidSchema, path, err)
	}
	if df.Model != "" {
		cfg.Model = df.Model
	}
	if df.Endpoint != "" {
		cfg.Endpoint = df.Endpoint
	}
	if df.APIKey != "" {
		cfg.APIKey = df.APIKey
	}
	d, err := NewSchemaDescriptor(df.Type, df.Fields, cfg)
	if err != nil {
		return nil, err
	}
	if len(df.WrapperKeys) > 0 {
		d = d.WithWrapperKeys(df.WrapperKeys...)
	}
	return d, nil
}
