package memberstack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

// ErrVerificationFailed means Memberstack rejected the token. Maps to 401,
// unlike transport failures which map to 502.
var ErrVerificationFailed = errors.New("memberstack verification failed")

var memberIDPattern = regexp.MustCompile(`^mem_[a-zA-Z0-9_]+$`)

// ValidMemberID reports whether s is a Memberstack-shaped member id.
func ValidMemberID(s string) bool {
	return memberIDPattern.MatchString(s)
}

type Client interface {
	// VerifyToken exchanges a frontend Memberstack token for the member id
	// it belongs to.
	VerifyToken(ctx context.Context, token string) (string, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	secretKey := os.Getenv("MEMBERSTACK_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("missing MEMBERSTACK_SECRET_KEY")
	}
	if os.Getenv("APP_ENV") == "production" && !strings.HasPrefix(secretKey, "sk_live_") {
		return nil, fmt.Errorf("production requires a live MEMBERSTACK_SECRET_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("MEMBERSTACK_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://admin.memberstack.com"
	}

	timeoutMs := 10000
	if v := os.Getenv("EXTERNAL_API_TIMEOUT_MS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutMs = parsed
		}
	}

	return &client{
		log:        log.With("client", "MemberstackClient"),
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
	}, nil
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	ID string `json:"id"`
}

func (c *client) VerifyToken(ctx context.Context, token string) (string, error) {
	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/members/verify-token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("Memberstack rejected token", "status", resp.StatusCode)
		return "", ErrVerificationFailed
	}

	var verified verifyResponse
	if err := json.Unmarshal(raw, &verified); err != nil {
		return "", fmt.Errorf("memberstack decode error: %w", err)
	}
	if verified.ID == "" {
		return "", ErrVerificationFailed
	}
	return verified.ID, nil
}
