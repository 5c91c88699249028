package configschema

import (
	"encoding/json"
	"testing"

	"github.com/nimburion/searchcriteria/pkg/config"
)

func property(t *testing.T, schema map[string]any, path ...string) map[string]any {
	t.Helper()
	node := schema
	for _, key := range path {
		props, ok := node["properties"].(map[string]any)
		if !ok {
			t.Fatalf("no properties at %v", path)
		}
		if node, ok = props[key].(map[string]any); !ok {
			t.Fatalf("missing property %s in %v", key, path)
		}
	}
	return node
}

func build(t *testing.T, defaults *config.Config) map[string]any {
	t.Helper()
	schema, err := Build(defaults)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	return out
}

func TestBuild_UsesConfigKeys(t *testing.T) {
	schema := build(t, nil)

	for _, path := range [][]string{
		{"search", "legacy_types"},
		{"search", "breaker_max_failures"},
		{"query", "default_limit"},
		{"query", "fields"},
		{"observability", "metrics_enabled"},
	} {
		property(t, schema, path...)
	}
	search := schema["properties"].(map[string]any)["search"].(map[string]any)
	if _, ok := search["properties"].(map[string]any)["LegacyTypes"]; ok {
		t.Fatal("Go field names must be replaced by config keys")
	}
}

func TestBuild_InjectsDefaults(t *testing.T) {
	schema := build(t, nil)

	if got := property(t, schema, "query", "default_limit")["default"]; got != float64(10) {
		t.Errorf("query.default_limit default = %v, want 10", got)
	}
	timeout := property(t, schema, "search", "operation_timeout")
	if timeout["type"] != "string" || timeout["default"] != "5s" {
		t.Errorf("durations must be strings with Go duration defaults, got %v", timeout)
	}
	if got := property(t, schema, "query", "aggregation_name")["default"]; got != "result" {
		t.Errorf("query.aggregation_name default = %v", got)
	}
}

func TestBuild_EnumsMatchValidation(t *testing.T) {
	schema := build(t, nil)

	enum, ok := property(t, schema, "search", "driver")["enum"].([]any)
	if !ok || len(enum) != 3 || enum[0] != config.SearchDriverHTTP {
		t.Errorf("unexpected search.driver enum %v", enum)
	}
	levels := property(t, schema, "observability", "log_level")["enum"].([]any)
	if len(levels) != 4 {
		t.Errorf("unexpected log levels %v", levels)
	}
}

func TestBuild_RequiredKeysHaveNoDefault(t *testing.T) {
	schema := build(t, nil)

	search := property(t, schema, "search")
	required, _ := search["required"].([]any)
	for _, name := range required {
		prop := property(t, schema, "search", name.(string))
		if _, ok := prop["default"]; ok {
			t.Errorf("search.%s is required but has a default", name)
		}
	}
}

func TestBuild_TitleFromServiceName(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Service.Name = "catalog-search"
	schema := build(t, cfg)

	if schema["title"] != "catalog-search Configuration" {
		t.Errorf("unexpected title %v", schema["title"])
	}
	if got := property(t, schema, "service", "name")["default"]; got != "catalog-search" {
		t.Errorf("service.name default = %v", got)
	}
}
