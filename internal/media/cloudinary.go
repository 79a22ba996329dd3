package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/lucasbessegato/TrokaiBackend/internal/apperr"
)

// Store accepts a binary file plus a folder key and returns a durable
// public URL.
type Store interface {
	Upload(ctx context.Context, folder, filename string, file io.Reader) (string, error)
}

type CloudinaryStore struct {
	cloudName  string
	preset     string
	httpClient *http.Client
}

func NewCloudinaryStore(cloudName, preset string) *CloudinaryStore {
	return &CloudinaryStore{
		cloudName: cloudName,
		preset:    preset,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (s *CloudinaryStore) uploadURL() string {
	return fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", s.cloudName)
}

func (s *CloudinaryStore) Upload(ctx context.Context, folder, filename string, file io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		defer mw.Close()
		if err := mw.WriteField("upload_preset", s.preset); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("folder", folder); err != nil {
			pw.CloseWithError(err)
			return
		}
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL(), pr)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: cloudinary upload: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: cloudinary upload status %d: %s", apperr.ErrUpstream, resp.StatusCode, body)
	}

	var result struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode cloudinary response: %v", apperr.ErrUpstream, err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("%w: cloudinary response missing secure_url", apperr.ErrUpstream)
	}

	return result.SecureURL, nil
}
