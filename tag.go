package aientity

import (
	"reflect"
	"strings"
)

// aiTag is the struct tag carrying a field's description for the model.
const aiTag = "ai"

type fieldTag struct {
	name        string // record key, from the json tag or the Go field name
	description string // empty → the prompt falls back to name
}

// parseFieldTags reads `json:"<name>,..."` and `ai:"<description>"`.
// A "-" in either tag excludes the field.
func parseFieldTags(f reflect.StructField) (ft fieldTag, skip bool) {
	jsonName := strings.Split(f.Tag.Get("json"), ",")[0]
	if jsonName == "-" {
		return ft, true
	}
	desc, _ := f.Tag.Lookup(aiTag)
	if desc == "-" {
		return ft, true
	}
	ft.name = jsonName
	if ft.name == "" {
		ft.name = f.Name
	}
	ft.description = strings.TrimSpace(desc)
	return ft, false
}
