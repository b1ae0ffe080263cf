package handlers

import (
	"strings"
	"testing"
)

func TestEncryptedPayloadKIDLimitCountsCharacters(t *testing.T) {
	one := 1
	kid := strings.Repeat("鍵", maxKIDLength)
	req := encryptedPayloadRequest{Ciphertext: "ct", IV: "iv", Alg: "AES-GCM", V: &one, KID: &kid}

	payload, err := req.validate()
	if err != nil {
		t.Fatalf("expected %d-char kid accepted, got %v", maxKIDLength, err)
	}
	if payload.KID == nil || *payload.KID != kid {
		t.Fatalf("expected kid preserved, got %v", payload.KID)
	}

	long := strings.Repeat("鍵", maxKIDLength+1)
	req.KID = &long
	if _, err := req.validate(); err == nil {
		t.Fatalf("expected %d-char kid rejected", maxKIDLength+1)
	}
}

func TestClampInt(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", 500},
		{"abc", 500},
		{"0", 1},
		{"250", 250},
		{"99999", 2000},
	}
	for _, tc := range cases {
		if got := clampInt(tc.raw, 1, 2000, 500); got != tc.want {
			t.Fatalf("clampInt(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
