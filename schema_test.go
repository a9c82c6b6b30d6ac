package aientity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRecord struct {
	Name     string  `json:"name" ai:"full name"`
	Age      int8    `json:"age,omitempty"`
	Score    float32 `json:"score" ai:"exam score"`
	Active   bool
	Secret   string `json:"-"`
	Internal string `json:"internal" ai:"-"`
	hidden   string
}

func TestSchemaOf_Tags(t *testing.T) {
	s, err := schemaOf[taggedRecord]()
	require.NoError(t, err)

	assert.Equal(t, "taggedRecord", s.typeName)
	assert.Equal(t, []FieldSpec{
		{Name: "name", Type: TypeString, Description: "full name"},
		{Name: "age", Type: TypeInt},
		{Name: "score", Type: TypeFloat, Description: "exam score"},
		{Name: "Active", Type: TypeBool},
	}, s.fields)
	assert.Equal(t, []int{0}, s.index["name"])
	assert.Equal(t, []int{3}, s.index["Active"])
	assert.NotContains(t, s.index, "Secret")
	assert.NotContains(t, s.index, "internal")
}

func TestSchemaOf_Unsupported(t *testing.T) {
	type withSlice struct {
		Tags []string `json:"tags"`
	}
	_, err := schemaOf[withSlice]()
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = schemaOf[*Person]()
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = schemaOf[map[string]any]()
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestNewSchemaDescriptor_Validation(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name     string
		typeName string
		fields   []FieldSpec
		cfg      Config
	}{
		{"empty type name", " ", []FieldSpec{{Name: "a", Type: TypeString}}, cfg},
		{"no fields", "T", nil, cfg},
		{"unnamed field", "T", []FieldSpec{{Type: TypeString}}, cfg},
		{"duplicate field", "T", []FieldSpec{{Name: "a", Type: TypeString}, {Name: "a", Type: TypeInt}}, cfg},
		{"unknown type", "T", []FieldSpec{{Name: "a", Type: "date"}}, cfg},
		{"no model", "T", []FieldSpec{{Name: "a", Type: TypeString}}, Config{Endpoint: "http://x"}},
		{"no endpoint", "T", []FieldSpec{{Name: "a", Type: TypeString}}, Config{Model: "m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchemaDescriptor(tt.typeName, tt.fields, tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestNewSchemaDescriptor_NormalizesTypesAndCopies(t *testing.T) {
	fields := []FieldSpec{{Name: "n", Type: "Integer"}, {Name: "ok", Type: "boolean"}}
	d, err := NewSchemaDescriptor("Thing", fields, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, TypeInt, d.Fields()[0].Type)
	assert.Equal(t, TypeBool, d.Fields()[1].Type)

	fields[0].Name = "changed"
	got := d.Fields()
	got[1].Name = "changed too"
	assert.Equal(t, "n", d.Fields()[0].Name)
	assert.Equal(t, "ok", d.Fields()[1].Name)
}

func TestDefaultWrapperKeys(t *testing.T) {
	tests := map[string][]string{
		"Person":  {"persons", "data", "results"},
		"Company": {"companies", "data", "results"},
		"Box":     {"boxes", "data", "results"},
		"Day":     {"days", "data", "results"},
		"Data":    {"datas", "data", "results"},
		"Result":  {"results", "data"},
	}
	for typeName, want := range tests {
		assert.Equal(t, want, defaultWrapperKeys(typeName), typeName)
	}
}

func TestWithWrapperKeys(t *testing.T) {
	d, err := DescriptorOf[Person](DefaultConfig())
	require.NoError(t, err)

	d2 := d.WithWrapperKeys("people", "", "people", "items")
	assert.Equal(t, []string{"people", "items"}, d2.WrapperKeys())
	assert.Equal(t, []string{"persons", "data", "results"}, d.WrapperKeys())
}

func TestDescriptorOf(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "secret"
	d, err := DescriptorOf[Person](cfg)
	require.NoError(t, err)

	assert.Equal(t, "Person", d.TypeName())
	assert.Equal(t, DefaultModel, d.Model())
	assert.Equal(t, DefaultEndpoint, d.Endpoint())
	assert.Equal(t, "secret", d.APIKey())
	assert.Equal(t, []FieldSpec{
		{Name: "name", Type: TypeString, Description: "姓名"},
		{Name: "age", Type: TypeInt, Description: "年龄"},
		{Name: "occupation", Type: TypeString, Description: "职业"},
	}, d.Fields())
}

func TestLoadDescriptor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
type: Book
model: gpt-4o-mini
wrapper_keys: [books, items]
fields:
  - name: title
    type: string
    description: 书名
  - name: pages
    type: integer
  - name: price
    type: number
`), 0o600))

	d, err := LoadDescriptor(path, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "Book", d.TypeName())
	assert.Equal(t, "gpt-4o-mini", d.Model())
	assert.Equal(t, DefaultEndpoint, d.Endpoint())
	assert.Equal(t, []string{"books", "items"}, d.WrapperKeys())
	assert.Equal(t, []FieldSpec{
		{Name: "title", Type: TypeString, Description: "书名"},
		{Name: "pages", Type: TypeInt},
		{Name: "price", Type: TypeFloat},
	}, d.Fields())
}

func TestLoadDescriptor_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDescriptor(filepath.Join(dir, "missing.yaml"), DefaultConfig())
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fields: [unterminated"), 0o600))
	_, err = LoadDescriptor(bad, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidSchema)

	noFields := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(noFields, []byte("type: Empty\n"), 0o600))
	_, err = LoadDescriptor(noFields, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestParseFieldType(t *testing.T) {
	for in, want := range map[string]FieldType{
		"string": TypeString, " Text ": TypeString,
		"int": TypeInt, "LONG": TypeInt,
		"bool": TypeBool, "Boolean": TypeBool,
		"float": TypeFloat, "double": TypeFloat,
	} {
		got, err := ParseFieldType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFieldType("uuid")
	assert.ErrorIs(t, err, ErrInvalidSchema)
}
