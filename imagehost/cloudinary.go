// Package imagehost uploads menu pictures to Cloudinary.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.cloudinary.com/v1_1"

// Cloudinary performs unsigned uploads with a preset.
type Cloudinary struct {
	HTTP         *http.Client
	BaseURL      string
	cloudName    string
	uploadPreset string
	folder       string
}

func NewCloudinary(cloudName, uploadPreset string) *Cloudinary {
	return &Cloudinary{
		HTTP:         &http.Client{Timeout: 30 * time.Second},
		BaseURL:      defaultBaseURL,
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		folder:       "foods",
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Cloudinary) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", err
	}
	if err := mw.WriteField("folder", c.folder); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.BaseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("cloudinary upload: %s", res.Status)
	}
	if res.StatusCode != http.StatusOK {
		if out.Error != nil {
			return "", fmt.Errorf("cloudinary upload: %s", out.Error.Message)
		}
		return "", fmt.Errorf("cloudinary upload: %s", res.Status)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload: empty url")
	}
	return out.SecureURL, nil
}
