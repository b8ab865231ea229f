// Package inspector extracts displayable fields from agent views using
// reflection and `inspect` struct tags.
package inspector

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/pthm-cable/gridlife/telemetry"
)

// Widget types for rendering fields.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetColor
	WidgetSkip
)

// Field represents a struct field with rendering hints.
type Field struct {
	Name    string
	Value   any
	Widget  Widget
	Options map[string]string
}

// ParseTag parses an inspect struct tag.
// Format: `inspect:"widget[,option:value...]"`
// Examples:
//
//	`inspect:"bar"`
//	`inspect:"bar,max:200"`
//	`inspect:"label,fmt:%.1f"`
//	`inspect:"skip"`
func ParseTag(tag string) (Widget, map[string]string) {
	options := make(map[string]string)

	if tag == "" {
		return WidgetAuto, options
	}

	parts := strings.Split(tag, ",")

	var widget Widget
	switch strings.TrimSpace(parts[0]) {
	case "label":
		widget = WidgetLabel
	case "bar":
		widget = WidgetBar
	case "color":
		widget = WidgetColor
	case "skip":
		widget = WidgetSkip
	default:
		widget = WidgetAuto
	}

	for _, part := range parts[1:] {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) == 2 {
			options[kv[0]] = kv[1]
		}
	}

	return widget, options
}

// ExtractFields lists the exported fields of a struct in declaration order.
// Nested structs are flattened with a "Parent." name prefix unless they
// implement encoding.TextMarshaler.
func ExtractFields(v any) []Field {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return appendFields(nil, "", rv)
}

var textMarshaler = reflect.TypeFor[encoding.TextMarshaler]()

func appendFields(fields []Field, prefix string, v reflect.Value) []Field {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := v.Field(i)

		widget, options := ParseTag(sf.Tag.Get("inspect"))
		if widget == WidgetSkip {
			continue
		}

		name := prefix + sf.Name
		if fv.Kind() == reflect.Struct && !fv.Type().Implements(textMarshaler) {
			fields = appendFields(fields, name+".", fv)
			continue
		}

		if widget == WidgetAuto {
			widget = autoDetectWidget(fv)
		}
		fields = append(fields, Field{
			Name:    name,
			Value:   fv.Interface(),
			Widget:  widget,
			Options: options,
		})
	}
	return fields
}

// autoDetectWidget chooses a widget based on the field type.
func autoDetectWidget(v reflect.Value) Widget {
	if v.Kind() == reflect.Array && v.Len() == 3 && v.Type().Elem().Kind() == reflect.Uint8 {
		return WidgetColor
	}
	return WidgetLabel
}

// FormatValue formats a field value as a string. Floats use two decimals
// unless fmtStr is given; NaN and infinities render as the placeholder.
func FormatValue(value any, fmtStr string) string {
	switch v := value.(type) {
	case float32:
		return formatFloat(float64(v), fmtStr)
	case float64:
		return formatFloat(v, fmtStr)
	case encoding.TextMarshaler:
		if b, err := v.MarshalText(); err == nil {
			return string(b)
		}
	}
	if fmtStr == "" {
		return fmt.Sprintf("%v", value)
	}
	return fmt.Sprintf(fmtStr, value)
}

func formatFloat(v float64, fmtStr string) string {
	if fmtStr == "" {
		return telemetry.FormatFloat(v, 2)
	}
	if s := telemetry.FormatFloat(v, 0); s == telemetry.Placeholder {
		return s
	}
	return fmt.Sprintf(fmtStr, v)
}

// GetMax returns the max option as a float, defaulting to 1.0.
func GetMax(options map[string]string) float64 {
	if maxStr, ok := options["max"]; ok {
		if v, err := strconv.ParseFloat(maxStr, 64); err == nil {
			return v
		}
	}
	return 1.0
}

// GetFloatValue extracts a float64 from numeric values.
func GetFloatValue(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}

// GetRGB extracts a color from any [3]uint8-shaped value.
func GetRGB(value any) ([3]uint8, bool) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Array || rv.Len() != 3 || rv.Type().Elem().Kind() != reflect.Uint8 {
		return [3]uint8{}, false
	}
	return [3]uint8{uint8(rv.Index(0).Uint()), uint8(rv.Index(1).Uint()), uint8(rv.Index(2).Uint())}, true
}
