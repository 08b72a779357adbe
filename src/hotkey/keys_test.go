package hotkey

import (
	"reflect"
	"testing"
)

func TestKeyNameToRawcodes(t *testing.T) {
	tests := []struct {
		keyName  string
		expected []uint16
	}{
		// Modifier keys
		{"ctrl", []uint16{162, 163}},
		{"alt", []uint16{164, 165}},
		{"shift", []uint16{160, 161}},
		{"win", []uint16{91, 92}},
		{"cmd", []uint16{91, 92}},

		{"a", []uint16{65}},
		{"x", []uint16{88}},
		{"z", []uint16{90}},
		{"0", []uint16{48}},
		{"9", []uint16{57}},

		{"f1", []uint16{112}},
		{"f12", []uint16{123}},
		{"f24", []uint16{135}},
		{"f25", nil},
		{"f1x", nil},

		{"space", []uint16{32}},
		{"Escape", []uint16{27}},
		{"pgdn", []uint16{34}},

		{"unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keyName, func(t *testing.T) {
			result := keyNameToRawcodes(tt.keyName)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("keyNameToRawcodes(%q) = %v, expected %v", tt.keyName, result, tt.expected)
			}
		})
	}
}

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Ctrl+Alt+X", []string{"ctrl", "alt", "x"}},
		{"ctrl + alt + c", []string{"ctrl", "alt", "c"}},
		{"Control+Shift+F13", []string{"ctrl", "shift", "f13"}},
		{"Ctrl+Win+E", []string{"ctrl", "cmd", "e"}},
		{"Super+Alt+T", []string{"cmd", "alt", "t"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseHotkey(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("parseHotkey(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseCombo(t *testing.T) {
	c, err := ParseCombo("Ctrl+Alt+X")
	if err != nil {
		t.Fatalf("ParseCombo: %v", err)
	}
	want := [][]uint16{{162, 163}, {164, 165}, {88}}
	if !reflect.DeepEqual(c.keys, want) {
		t.Errorf("keys = %v, want %v", c.keys, want)
	}
	if c.Text != "Ctrl+Alt+X" {
		t.Errorf("Text = %q", c.Text)
	}

	for _, bad := range []string{"", "+", "Ctrl+Hyper+X"} {
		if _, err := ParseCombo(bad); err == nil {
			t.Errorf("ParseCombo(%q) expected error", bad)
		}
	}
}
