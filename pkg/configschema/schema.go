// Package configschema generates the JSON Schema of the configuration file.
package configschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/nimburion/searchcriteria/pkg/config"
)

// enums lists the closed value sets checked by the loader, keyed by dotted path.
var enums = map[string][]any{
	"search.type":              {config.SearchTypeOpenSearch, config.SearchTypeElasticsearch},
	"search.driver":            {config.SearchDriverHTTP, config.SearchDriverOpenSearchSDK, config.SearchDriverElasticsearchSDK},
	"observability.log_level":  {"debug", "info", "warn", "error"},
	"observability.log_format": {"json", "text"},
}

var durationType = reflect.TypeOf(time.Duration(0))

// Build returns a JSON Schema for Config with the values of defaults injected as
// schema defaults. A nil defaults uses config.DefaultConfig().
func Build(defaults *config.Config) (*jsonschema.Schema, error) {
	opts := &jsonschema.ForOptions{
		IgnoreInvalidTypes: true,
		TypeSchemas: map[reflect.Type]*jsonschema.Schema{
			durationType: {Type: "string", Description: "Go duration such as 500ms or 5s"},
		},
	}

	configType := reflect.TypeOf(config.Config{})
	schema, err := jsonschema.ForType(configType, opts)
	if err != nil {
		return nil, fmt.Errorf("build config schema: %w", err)
	}
	renameProperties(schema, configType)

	if defaults == nil {
		defaults = config.DefaultConfig()
	}
	injectDefaults(schema, reflect.ValueOf(defaults))
	pruneRequiredWithDefaults(schema)
	if err := applyEnums(schema); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(defaults.Service.Name)
	if name == "" {
		name = "searchctl"
	}
	schema.Title = name + " Configuration"
	schema.Description = "Schema for " + name + " configuration. Every key can also be set through <PREFIX>_<SECTION>_<KEY> environment variables."
	schema.Schema = "https://json-schema.org/draft/2020-12/schema"
	return schema, nil
}

// renameProperties replaces the Go field names jsonschema derives with the
// mapstructure keys viper reads.
func renameProperties(schema *jsonschema.Schema, t reflect.Type) {
	if schema == nil {
		return
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		renamed := make(map[string]string)
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			from := jsonName(field)
			to := keyName(field)
			renamed[from] = to
			if prop, ok := schema.Properties[from]; ok {
				delete(schema.Properties, from)
				schema.Properties[to] = prop
				renameProperties(prop, field.Type)
			}
		}
		schema.Required = renameAll(schema.Required, renamed)
		schema.PropertyOrder = renameAll(schema.PropertyOrder, renamed)
	case reflect.Slice, reflect.Array:
		renameProperties(schema.Items, t.Elem())
	case reflect.Map:
		renameProperties(schema.AdditionalProperties, t.Elem())
	}
}

func renameAll(names []string, renamed map[string]string) []string {
	if len(names) == 0 {
		return names
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if to, ok := renamed[name]; ok {
			name = to
		}
		out = append(out, name)
	}
	return out
}

func jsonName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("json"); ok {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

func keyName(field reflect.StructField) string {
	if name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ","); name != "" && name != "-" {
		return name
	}
	return strings.ToLower(field.Name)
}

func injectDefaults(schema *jsonschema.Schema, value reflect.Value) {
	if schema == nil || !value.IsValid() {
		return
	}
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return
		}
		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		if (value.Kind() == reflect.Slice || value.Kind() == reflect.Map) && value.IsNil() {
			return
		}
		if schema.Default == nil {
			schema.Default = marshalDefault(value)
		}
		return
	}
	t := value.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if prop, ok := schema.Properties[keyName(field)]; ok {
			injectDefaults(prop, value.Field(i))
		}
	}
}

func marshalDefault(value reflect.Value) json.RawMessage {
	var v any = value.Interface()
	if value.Type() == durationType {
		v = value.Interface().(time.Duration).String()
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

func pruneRequiredWithDefaults(schema *jsonschema.Schema) {
	if schema == nil {
		return
	}
	for _, prop := range schema.Properties {
		pruneRequiredWithDefaults(prop)
	}
	kept := schema.Required[:0]
	for _, name := range schema.Required {
		if prop := schema.Properties[name]; prop == nil || prop.Default == nil {
			kept = append(kept, name)
		}
	}
	schema.Required = kept
}

func applyEnums(schema *jsonschema.Schema) error {
	for path, values := range enums {
		prop := schema
		for _, key := range strings.Split(path, ".") {
			if prop = prop.Properties[key]; prop == nil {
				return fmt.Errorf("config schema has no property %s", path)
			}
		}
		prop.Enum = values
	}
	return nil
}
