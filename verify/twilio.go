// Package verify sends and checks SMS one-time codes through Twilio Verify.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://verify.twilio.com/v2"

type TwilioClient struct {
	HTTP       *http.Client
	BaseURL    string
	accountSID string
	authToken  string
	serviceSID string
}

func NewTwilioClient(accountSID, authToken, serviceSID string) *TwilioClient {
	return &TwilioClient{
		HTTP:       &http.Client{Timeout: 10 * time.Second},
		BaseURL:    defaultBaseURL,
		accountSID: accountSID,
		authToken:  authToken,
		serviceSID: serviceSID,
	}
}

type verificationResponse struct {
	Status string `json:"status"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *TwilioClient) post(ctx context.Context, resource string, form url.Values) (*verificationResponse, error) {
	endpoint := fmt.Sprintf("%s/Services/%s/%s", c.BaseURL, c.serviceSID, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if err := json.NewDecoder(res.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			return nil, fmt.Errorf("twilio %s: %s", resource, res.Status)
		}
		return nil, fmt.Errorf("twilio %s: %s (code %d)", resource, apiErr.Message, apiErr.Code)
	}
	var out verificationResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("twilio %s: decode response: %w", resource, err)
	}
	return &out, nil
}

func (c *TwilioClient) SendOTP(ctx context.Context, phone string) error {
	_, err := c.post(ctx, "Verifications", url.Values{"To": {phone}, "Channel": {"sms"}})
	return err
}

// CheckOTP reports whether code is the one last sent to phone.
func (c *TwilioClient) CheckOTP(ctx context.Context, phone, code string) (bool, error) {
	out, err := c.post(ctx, "VerificationCheck", url.Values{"To": {phone}, "Code": {code}})
	if err != nil {
		return false, err
	}
	return out.Status == "approved", nil
}
