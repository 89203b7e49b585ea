package main

import (
	"slices"
	"testing"
)

func TestParseResizes(t *testing.T) {
	got, err := parseResizes("60:1024x768, 90:640x480")
	if err != nil {
		t.Fatalf("parseResizes() error = %v", err)
	}
	want := []resizeStep{{60, 1024, 768}, {90, 640, 480}}
	if !slices.Equal(got, want) {
		t.Errorf("parseResizes() = %v, want %v", got, want)
	}

	if steps, err := parseResizes(""); err != nil || steps != nil {
		t.Errorf("parseResizes(\"\") = %v, %v", steps, err)
	}
}

func TestParseResizesErrors(t *testing.T) {
	for _, in := range []string{
		"1024x768",
		"a:1024x768",
		"-1:10x10",
		"5:1024",
		"5:wx10",
		"5:10xh",
		"90:10x10,60:20x20",
	} {
		if _, err := parseResizes(in); err == nil {
			t.Errorf("parseResizes(%q) succeeded", in)
		}
	}
}
