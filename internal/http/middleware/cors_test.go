package middleware

import (
	"reflect"
	"testing"
)

func TestAllowedOriginsParsesList(t *testing.T) {
	got := AllowedOrigins("https://app.example.com, https://staging.example.com ,")
	want := []string{"https://app.example.com", "https://staging.example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAllowedOriginsFallsBackToDefaults(t *testing.T) {
	for _, raw := range []string{"", " ", ","} {
		got := AllowedOrigins(raw)
		if !reflect.DeepEqual(got, defaultAllowedOrigins) {
			t.Fatalf("raw %q: got %v", raw, got)
		}
	}
}
