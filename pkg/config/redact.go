package config

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

const redactedValue = "***"

// String renders the configuration as indented key/value lines.
func (c *Config) String() string {
	var p printer
	p.object(reflect.ValueOf(c).Elem(), reflect.Value{}, 0)
	return p.String()
}

// Redacted renders the configuration with every value set by the secrets file
// masked. Pass the secrets Config returned by LoadWithSecrets.
func (c *Config) Redacted(secrets *Config) string {
	if secrets == nil {
		return c.String()
	}
	var p printer
	p.object(reflect.ValueOf(c).Elem(), reflect.ValueOf(secrets).Elem(), 0)
	return p.String()
}

// printer writes a YAML-like tree. mask values come from the secrets config and
// are invalid outside it.
type printer struct {
	strings.Builder
}

func (p *printer) line(depth int, format string, args ...any) {
	p.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(p, format, args...)
	p.WriteByte('\n')
}

func (p *printer) object(v, mask reflect.Value, depth int) {
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		value := v.Field(i)
		var m reflect.Value
		if mask.IsValid() {
			m = mask.Field(i)
		}
		key := keyOf(field)

		switch value.Kind() {
		case reflect.Struct:
			p.line(depth, "%s:", key)
			p.object(value, m, depth+1)
		case reflect.Slice:
			if value.Len() == 0 {
				p.line(depth, "%s: []", key)
				continue
			}
			p.line(depth, "%s:", key)
			for j := range value.Len() {
				p.line(depth+1, "- %v", leaf(value.Index(j), m))
			}
		case reflect.Map:
			if value.Len() == 0 {
				p.line(depth, "%s: {}", key)
				continue
			}
			p.line(depth, "%s:", key)
			keys := value.MapKeys()
			slices.SortFunc(keys, func(a, b reflect.Value) int {
				return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
			})
			for _, k := range keys {
				p.line(depth+1, "%v: %v", k, leaf(value.MapIndex(k), m))
			}
		default:
			p.line(depth, "%s: %v", key, leaf(value, m))
		}
	}
}

func keyOf(field reflect.StructField) string {
	if tag := field.Tag.Get("mapstructure"); tag != "" && tag != "-" {
		return tag
	}
	return field.Name
}

// leaf masks value when the secrets file set the matching key.
func leaf(value, mask reflect.Value) any {
	if !mask.IsValid() {
		return value.Interface()
	}
	switch mask.Kind() {
	case reflect.Slice, reflect.Map:
		if mask.Len() > 0 {
			return redactedValue
		}
	default:
		if !mask.IsZero() {
			return redactedValue
		}
	}
	return value.Interface()
}
