package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var ErrUnknownKey = errors.New("unknown config key")

// ConfigField represents metadata about a config field extracted from struct tags
type ConfigField struct {
	Key      string   // e.g., "serve.port"
	Default  string   // default value as string
	Desc     string   // description for help text
	Min      int      // minimum value for int fields (0 = no limit)
	Max      int      // maximum value for int fields (0 = no limit)
	OneOf    []string // allowed values for string fields (nil = any)
	Type     string   // "string" or "int"
	Category string   // e.g., "annotate", "serve"
}

var (
	fieldCache     []ConfigField
	fieldCacheOnce sync.Once
)

// getConfigFields extracts all config fields from Config using reflection
func getConfigFields() []ConfigField {
	fieldCacheOnce.Do(func() {
		var fields []ConfigField
		extractFields(reflect.TypeOf(Config{}), &fields)
		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Key < fields[j].Key
		})
		fieldCache = fields
	})
	return fieldCache
}

// extractFields recursively extracts config fields from a struct type
func extractFields(t reflect.Type, fields *[]ConfigField) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		configKey := field.Tag.Get("config")
		if configKey == "" {
			if field.Type.Kind() == reflect.Struct {
				extractFields(field.Type, fields)
			}
			continue
		}

		cf := ConfigField{
			Key:      configKey,
			Default:  field.Tag.Get("default"),
			Desc:     field.Tag.Get("desc"),
			Category: strings.Split(configKey, ".")[0],
		}
		if minStr := field.Tag.Get("min"); minStr != "" {
			cf.Min, _ = strconv.Atoi(minStr)
		}
		if maxStr := field.Tag.Get("max"); maxStr != "" {
			cf.Max, _ = strconv.Atoi(maxStr)
		}
		if oneOf := field.Tag.Get("oneof"); oneOf != "" {
			cf.OneOf = strings.Split(oneOf, ",")
		}

		switch field.Type.Kind() {
		case reflect.Int:
			cf.Type = "int"
		case reflect.String:
			cf.Type = "string"
		}

		*fields = append(*fields, cf)
	}
}

// check validates a string value against the field's constraints
func (f ConfigField) check(value string) error {
	switch f.Type {
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: invalid integer value: %s", f.Key, value)
		}
		if f.Min != 0 && n < f.Min {
			return fmt.Errorf("%s: value %d is below minimum %d", f.Key, n, f.Min)
		}
		if f.Max != 0 && n > f.Max {
			return fmt.Errorf("%s: value %d exceeds maximum %d", f.Key, n, f.Max)
		}
	case "string":
		if f.OneOf != nil && !slices.Contains(f.OneOf, value) {
			return fmt.Errorf("%s: %q is not one of %s", f.Key, value, strings.Join(f.OneOf, ", "))
		}
	}
	return nil
}

// findField finds a config field by key
func findField(key string) *ConfigField {
	for _, f := range getConfigFields() {
		if f.Key == key {
			return &f
		}
	}
	return nil
}

// fieldByKey locates the struct field tagged with key inside cfg
func fieldByKey(cfg *Config, key string) (reflect.Value, bool) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return reflect.Value{}, false
	}

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	var section reflect.Value
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == parts[0] {
			section = v.Field(i)
			break
		}
	}
	if !section.IsValid() || section.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	st := section.Type()
	for i := 0; i < st.NumField(); i++ {
		if st.Field(i).Tag.Get("config") == key {
			return section.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// getFieldValue gets a field value from the config using reflection
func getFieldValue(cfg *Config, key string) (string, bool) {
	fv, ok := fieldByKey(cfg, key)
	if !ok {
		return "", false
	}
	switch fv.Kind() {
	case reflect.String:
		return fv.String(), true
	case reflect.Int:
		return strconv.FormatInt(fv.Int(), 10), true
	}
	return "", false
}

// setFieldValue validates value and stores it in the field tagged with key
func setFieldValue(cfg *Config, key, value string) error {
	field := findField(key)
	if field == nil {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := field.check(value); err != nil {
		return err
	}

	fv, ok := fieldByKey(cfg, key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(value)
	case reflect.Int:
		n, _ := strconv.Atoi(value)
		fv.SetInt(int64(n))
	}
	return nil
}

// applyDefaults fills zero-valued fields from their default tags
func applyDefaults(cfg *Config) {
	for _, f := range getConfigFields() {
		if f.Default == "" {
			continue
		}
		if v, _ := getFieldValue(cfg, f.Key); v == "" || v == "0" {
			_ = setFieldValue(cfg, f.Key, f.Default)
		}
	}
}

// ListKeys returns all available config keys
func ListKeys() []string {
	fields := getConfigFields()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

// GenerateHelpText generates help text for config options
func GenerateHelpText() string {
	var sb strings.Builder

	byCategory := make(map[string][]ConfigField)
	for _, f := range getConfigFields() {
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}

	categories := []struct {
		key   string
		title string
	}{
		{"annotate", "Annotation"},
		{"parse", "Timestamp parsing"},
		{"serve", "Page server"},
		{"log", "Logging"},
	}

	for _, cat := range categories {
		fields, ok := byCategory[cat.key]
		if !ok || len(fields) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("  %s:\n", cat.title))
		for _, f := range fields {
			defaultStr := ""
			if f.Default != "" {
				defaultStr = fmt.Sprintf(" (default: %s)", f.Default)
			}
			sb.WriteString(fmt.Sprintf("    %-20s %s%s\n", f.Key, f.Desc, defaultStr))
		}
		sb.WriteString("\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}
