package inspector

import (
	"math"
	"testing"

	"github.com/pthm-cable/gridlife/components"
)

type vitals struct {
	Energy float64 `inspect:"bar,max:200"`
	Hidden int     `inspect:"skip"`
}

type sample struct {
	ID          uint32
	Color       components.Color
	Personality components.Personality
	Vitals      vitals
	private     int
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag    string
		widget Widget
		opt    string
		val    string
	}{
		{"", WidgetAuto, "", ""},
		{"bar,max:200", WidgetBar, "max", "200"},
		{"label, fmt:%.1f", WidgetLabel, "fmt", "%.1f"},
		{"skip", WidgetSkip, "", ""},
		{"color", WidgetColor, "", ""},
	}
	for _, tt := range tests {
		w, opts := ParseTag(tt.tag)
		if w != tt.widget {
			t.Errorf("ParseTag(%q) widget = %d, want %d", tt.tag, w, tt.widget)
		}
		if tt.opt != "" && opts[tt.opt] != tt.val {
			t.Errorf("ParseTag(%q) %s = %q, want %q", tt.tag, tt.opt, opts[tt.opt], tt.val)
		}
	}
}

func TestExtractFields_FlattensAndSkips(t *testing.T) {
	s := sample{
		ID:          7,
		Color:       components.Color{1, 2, 3},
		Personality: components.PersonalityLoner,
		Vitals:      vitals{Energy: 150, Hidden: 9},
		private:     1,
	}

	fields := ExtractFields(&s)
	want := []struct {
		name   string
		widget Widget
	}{
		{"ID", WidgetLabel},
		{"Color", WidgetColor},
		{"Personality", WidgetLabel},
		{"Vitals.Energy", WidgetBar},
	}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields: %+v", len(fields), fields)
	}
	for i, w := range want {
		if fields[i].Name != w.name || fields[i].Widget != w.widget {
			t.Errorf("field %d = %s/%d, want %s/%d", i, fields[i].Name, fields[i].Widget, w.name, w.widget)
		}
	}
	if GetMax(fields[3].Options) != 200 {
		t.Errorf("max option = %v, want 200", GetMax(fields[3].Options))
	}
}

func TestExtractFields_NonStruct(t *testing.T) {
	if fields := ExtractFields(42); fields != nil {
		t.Errorf("expected nil for non-struct, got %v", fields)
	}
	var nilPtr *sample
	if fields := ExtractFields(nilPtr); fields != nil {
		t.Errorf("expected nil for nil pointer, got %v", fields)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value any
		fmt   string
		want  string
	}{
		{1.234, "", "1.23"},
		{float32(0.5), "", "0.50"},
		{math.NaN(), "", "–"},
		{math.Inf(1), "%.1f", "–"},
		{2.0, "%.1f", "2.0"},
		{42, "", "42"},
		{components.PersonalitySocial, "", "social"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.value, tt.fmt); got != tt.want {
			t.Errorf("FormatValue(%v, %q) = %q, want %q", tt.value, tt.fmt, got, tt.want)
		}
	}
}

func TestGetFloatValue(t *testing.T) {
	for _, v := range []any{3, int32(3), uint32(3), float32(3), 3.0} {
		f, ok := GetFloatValue(v)
		if !ok || f != 3 {
			t.Errorf("GetFloatValue(%T) = %v, %v", v, f, ok)
		}
	}
	if _, ok := GetFloatValue("3"); ok {
		t.Error("string should not convert")
	}
}

func TestGetRGB(t *testing.T) {
	c, ok := GetRGB(components.Color{10, 20, 30})
	if !ok || c != [3]uint8{10, 20, 30} {
		t.Errorf("GetRGB = %v, %v", c, ok)
	}
	if _, ok := GetRGB([2]uint8{1, 2}); ok {
		t.Error("two-element array should not be a color")
	}
}
