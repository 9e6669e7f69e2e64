package router

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ParamParser parses string parameters into typed struct fields.
//
// Fields are selected with a `param` tag. A ",required" option makes a
// missing parameter an error. Pointer fields stay nil when the parameter is
// absent, which is how optional (":name?") parameters are usually bound.
// []string fields receive rest captures split on "/".
type ParamParser struct{}

// NewParamParser creates a new parameter parser.
func NewParamParser() *ParamParser {
	return &ParamParser{}
}

// Parse populates a struct with values from the params map.
// The target must be a pointer to a struct with `param` tags.
func (p *ParamParser) Parse(params map[string]string, target any) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", v.Kind())
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("param")
		if tag == "" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		fieldValue := v.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		value, ok := params[name]
		if !ok {
			if opts == "required" {
				return fmt.Errorf("missing required param %q", name)
			}
			continue
		}

		if fieldValue.Kind() == reflect.Ptr {
			ptr := reflect.New(fieldValue.Type().Elem())
			if err := p.setField(ptr.Elem(), value); err != nil {
				return fmt.Errorf("parsing param %q: %w", name, err)
			}
			fieldValue.Set(ptr)
			continue
		}

		if err := p.setField(fieldValue, value); err != nil {
			return fmt.Errorf("parsing param %q: %w", name, err)
		}
	}

	return nil
}

// setField sets a field value from a string.
func (p *ParamParser) setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", field.Type().Elem().Kind())
		}
		// Rest captures: "a/b/c" → ["a", "b", "c"]; "" → empty.
		var parts []string
		if value != "" {
			parts = strings.Split(value, "/")
		}
		field.Set(reflect.ValueOf(parts).Convert(field.Type()))

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}

	return nil
}
