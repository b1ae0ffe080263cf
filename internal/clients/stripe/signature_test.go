package stripe

import (
	"strings"
	"testing"
	"time"
)

func TestVerifySignatureRoundTrip(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	secret := "whsec_test"
	now := time.Now()

	header := SignPayload(payload, secret, now)
	if err := VerifySignature(payload, header, secret, now, SignatureTolerance); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()
	header := SignPayload(payload, "whsec_a", now)
	if err := VerifySignature(payload, header, "whsec_b", now, SignatureTolerance); err == nil {
		t.Fatalf("expected verification failure")
	}
}

func TestVerifySignatureTamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()
	header := SignPayload(payload, "whsec_test", now)
	if err := VerifySignature([]byte(`{"id":"evt_2"}`), header, "whsec_test", now, SignatureTolerance); err == nil {
		t.Fatalf("expected verification failure")
	}
}

func TestVerifySignatureTimestampTolerance(t *testing.T) {
	payload := []byte(`{}`)
	secret := "whsec_test"
	signedAt := time.Now().Add(-6 * time.Minute)

	header := SignPayload(payload, secret, signedAt)
	err := VerifySignature(payload, header, secret, time.Now(), SignatureTolerance)
	if err == nil || !strings.Contains(err.Error(), "tolerance") {
		t.Fatalf("expected tolerance error, got %v", err)
	}

	// The same header within tolerance still verifies.
	if err := VerifySignature(payload, header, secret, signedAt.Add(time.Minute), SignatureTolerance); err != nil {
		t.Fatalf("verify within tolerance: %v", err)
	}
}

func TestVerifySignatureMultipleV1Candidates(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	secret := "whsec_test"
	now := time.Now()

	good := SignPayload(payload, secret, now)
	// Prepend a stale candidate; any matching v1 passes.
	header := strings.Replace(good, ",v1=", ",v1=deadbeef,v1=", 1)
	if err := VerifySignature(payload, header, secret, now, SignatureTolerance); err != nil {
		t.Fatalf("verify with extra candidate: %v", err)
	}
}

func TestVerifySignatureMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "v1=abc", "t=notanumber,v1=abc", "t=123"} {
		if err := VerifySignature([]byte(`{}`), header, "whsec_test", time.Now(), SignatureTolerance); err == nil {
			t.Fatalf("header %q: expected error", header)
		}
	}
}
