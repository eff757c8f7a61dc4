package tool

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ValidationError represents argument validation errors with detailed information.
type ValidationError struct {
	Field   string `json:"field"`   // Argument that failed validation
	Value   string `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for argument '%s': %s", e.Field, e.Message)
}

// Get returns the value of key, or "" when absent.
func (a Args) Get(key string) string { return a[key] }

// Lookup returns the value of key and whether it was present.
func (a Args) Lookup(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

// GetOr returns the value of key, or def when absent or blank.
func (a Args) GetOr(key, def string) string {
	if v := strings.TrimSpace(a[key]); v != "" {
		return v
	}
	return def
}

// Int parses key as an integer, returning def when the argument is absent.
func (a Args) Int(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, &ValidationError{Field: key, Value: v, Message: "expected an integer"}
	}
	return n, nil
}

// Keys returns the argument names in sorted order.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Require checks that every name is present with a non-blank value.
func (a Args) Require(names ...string) error {
	for _, n := range names {
		if strings.TrimSpace(a[n]) == "" {
			return &ValidationError{Field: n, Value: a[n], Message: "required argument is missing"}
		}
	}
	return nil
}

// Bind copies args into the struct pointed to by dst. Fields are matched by
// the `arg` tag ("name" or "name,required"), falling back to the lower-cased
// field name. String, integer, float and bool fields are supported.
//
// Example:
//
//	type weatherArgs struct {
//	  City  string `arg:"city,required"`
//	  Units string `arg:"units"`
//	}
func Bind(args Args, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a non-nil struct pointer, got %T", dst)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name, required, skip := argTag(field)
		if skip {
			continue
		}

		raw, ok := args[name]
		if !ok || strings.TrimSpace(raw) == "" {
			if required {
				return &ValidationError{Field: name, Value: raw, Message: "required argument is missing"}
			}
			continue
		}

		if err := setField(rv.Field(i), raw); err != nil {
			return &ValidationError{Field: name, Value: raw, Message: err.Error()}
		}
	}

	return nil
}

// RequiredArgs lists the required argument names declared by the `arg` tags
// of structType.
func RequiredArgs(structType any) []string {
	t := reflect.TypeOf(structType)
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if name, req, skip := argTag(field); !skip && req {
			required = append(required, name)
		}
	}
	return required
}

func argTag(field reflect.StructField) (name string, required, skip bool) {
	tag := field.Tag.Get("arg")
	if tag == "-" {
		return "", false, true
	}

	name = strings.ToLower(field.Name)
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "required" {
			required = true
		}
	}
	return name, required, false
}

func setField(v reflect.Value, raw string) error {
	raw = strings.TrimSpace(raw)

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("expected type integer")
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("expected type unsigned integer")
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("expected type number")
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("expected type boolean")
		}
		v.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", v.Type())
	}

	return nil
}
