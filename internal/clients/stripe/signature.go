package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureTolerance bounds how stale a webhook timestamp may be.
const SignatureTolerance = 5 * time.Minute

type parsedSignature struct {
	timestamp int64
	v1        []string
}

// parseSignatureHeader splits a Stripe-Signature header of the form
// "t=1700000000,v1=abc...,v0=..." into its timestamp and v1 candidates.
func parseSignatureHeader(header string) (parsedSignature, error) {
	out := parsedSignature{}
	seenT := false
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return out, fmt.Errorf("invalid signature timestamp")
			}
			out.timestamp = ts
			seenT = true
		case "v1":
			out.v1 = append(out.v1, v)
		}
	}
	if !seenT || len(out.v1) == 0 {
		return out, fmt.Errorf("invalid Stripe-Signature format")
	}
	return out, nil
}

// VerifySignature checks a webhook payload against its Stripe-Signature
// header: HMAC-SHA256 over "<t>.<raw body>", constant-time comparison
// against every v1 candidate, timestamp within tolerance of now.
func VerifySignature(payload []byte, header, secret string, now time.Time, tolerance time.Duration) error {
	parsed, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	diff := now.Unix() - parsed.timestamp
	if diff < 0 {
		diff = -diff
	}
	if diff > int64(tolerance.Seconds()) {
		return fmt.Errorf("timestamp out of tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(parsed.timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range parsed.v1 {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return fmt.Errorf("signature verification failed")
}

// SignPayload produces a Stripe-Signature header value for a payload. Used
// by tests and local tooling to emit verifiable webhook requests.
func SignPayload(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
