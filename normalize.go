package aientity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Normalizer coerces model reply text into a single JSON object or a list of
// JSON objects.
type Normalizer struct {
	// WrapperKeys are tried in order when a list is requested and the reply
	// root is an object.
	WrapperKeys []string
	// Repair runs jsonrepair over replies that fail to parse.
	Repair bool
}

// NewNormalizer returns a normalizer using d's wrapper keys.
func NewNormalizer(d *SchemaDescriptor) Normalizer {
	return Normalizer{WrapperKeys: d.WrapperKeys()}
}

// ToObject parses raw and requires the root to be a JSON object.
func (n Normalizer) ToObject(raw string) (map[string]any, error) {
	root, err := n.parse(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("expected JSON object, got %s", jsonKind(root))}
	}
	return obj, nil
}

// ToArray parses raw and locates the list of records:
//
//  1. the root, if it is an array;
//  2. the value of the first wrapper key present on a root object;
//  3. otherwise the root itself, as a one-element list.
//
// A selected value that is not an array, or an element that is not an
// object, is a MalformedResponseError.
func (n Normalizer) ToArray(raw string) ([]map[string]any, error) {
	root, err := n.parse(raw)
	if err != nil {
		return nil, err
	}

	selected := root
	if obj, ok := root.(map[string]any); ok {
		selected = []any{root}
		for _, key := range n.WrapperKeys {
			if v, found := obj[key]; found {
				selected = v
				break
			}
		}
	}

	arr, ok := selected.([]any)
	if !ok {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("expected JSON array, got %s", jsonKind(selected))}
	}
	out := make([]map[string]any, 0, len(arr))
	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("element %d: expected JSON object, got %s", i, jsonKind(el))}
		}
		out = append(out, obj)
	}
	return out, nil
}

func (n Normalizer) parse(raw string) (any, error) {
	text := SanitizeJSONResponse(raw)
	v, err := decodeJSON(text)
	if err == nil {
		return v, nil
	}
	if !n.Repair {
		return nil, &MalformedResponseError{Reason: "content is not valid JSON", Err: err}
	}
	repaired, repairErr := jsonrepair.JSONRepair(text)
	if repairErr != nil {
		return nil, &MalformedResponseError{Reason: "content is not valid JSON and could not be repaired", Err: errors.Join(err, repairErr)}
	}
	v, err = decodeJSON(repaired)
	if err != nil {
		return nil, &MalformedResponseError{Reason: "repaired content is not valid JSON", Err: err}
	}
	return v, nil
}

// decodeJSON decodes exactly one JSON value, keeping numbers as json.Number.
func decodeJSON(s string) (any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("empty content")
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}
