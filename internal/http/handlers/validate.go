package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	types "github.com/yungbote/shadownav-backend/internal/domain"
)

const (
	maxMessageLength         = 2000
	maxClientMessageIDLength = 128
	maxKIDLength             = 128
)

type encryptedPayloadRequest struct {
	Ciphertext string  `json:"ciphertext"`
	IV         string  `json:"iv"`
	Alg        string  `json:"alg"`
	V          *int    `json:"v"`
	KID        *string `json:"kid"`
}

func (r *encryptedPayloadRequest) validate() (types.EncryptedPayload, error) {
	var out types.EncryptedPayload

	ciphertext := strings.TrimSpace(r.Ciphertext)
	if ciphertext == "" {
		return out, fmt.Errorf("ciphertext is required")
	}
	iv := strings.TrimSpace(r.IV)
	if iv == "" {
		return out, fmt.Errorf("iv is required")
	}
	alg := strings.TrimSpace(r.Alg)
	if alg == "" {
		return out, fmt.Errorf("alg is required")
	}
	if r.V == nil || *r.V <= 0 {
		return out, fmt.Errorf("v must be a positive integer")
	}

	var kid *string
	if r.KID != nil {
		trimmed := strings.TrimSpace(*r.KID)
		if utf8.RuneCountInString(trimmed) > maxKIDLength {
			return out, fmt.Errorf("kid must be <= %d chars", maxKIDLength)
		}
		kid = &trimmed
	}

	out = types.EncryptedPayload{
		Ciphertext: ciphertext,
		IV:         iv,
		Alg:        alg,
		V:          *r.V,
		KID:        kid,
	}
	return out, nil
}

// clampInt parses a query value into [min, max], using fallback when the
// value is absent or unparsable.
func clampInt(raw string, min, max, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
