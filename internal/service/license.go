package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LicenseValidator checks license keys against the external license service
type LicenseValidator struct {
	client    *http.Client
	verifyURL string
	productID string
}

type licenseRequest struct {
	ProductID  string `json:"product_id"`
	LicenseKey string `json:"license_key"`
}

type licenseResponse struct {
	Valid bool `json:"valid"`
}

func NewLicenseValidator(verifyURL, productID string, timeout time.Duration) *LicenseValidator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &LicenseValidator{
		client:    &http.Client{Timeout: timeout},
		verifyURL: verifyURL,
		productID: productID,
	}
}

// Validate returns false without error when the service says the key is bad.
// Errors are reserved for the service being unreachable or misbehaving.
func (l *LicenseValidator) Validate(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, nil
	}

	if l.verifyURL == "" {
		return false, fmt.Errorf("no license verification URL configured")
	}

	body, _ := json.Marshal(licenseRequest{
		ProductID:  l.productID,
		LicenseKey: key,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.verifyURL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("license service unreachable, %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, fmt.Errorf("failed to read license service response, %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return false, fmt.Errorf("license service returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return false, nil
	}

	var res licenseResponse
	if err := json.Unmarshal(respBody, &res); err != nil {
		return false, fmt.Errorf("invalid license service response, %w", err)
	}

	return res.Valid, nil
}
