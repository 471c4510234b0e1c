// Package upload is the client for the external file-storage endpoint. The
// endpoint is an opaque collaborator: bytes go in, a public URL comes out.
// Any non-success response maps to kpi.ErrUploadFailed so submission
// handlers can abort before writing a record.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/warp/kpi-engine/kpi"
)

// File is one upload request.
type File struct {
	Name       string
	MimeType   string
	Data       []byte
	Collection kpi.Collection
	Sales      string
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
}

// HTTPUploader talks to the storage endpoint over HTTP. The wire format is
// the one the storage script has always accepted: a JSON body carrying the
// file as a base64 data URL, sent as text/plain.
type HTTPUploader struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPUploader(endpoint string) *HTTPUploader {
	return &HTTPUploader{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type uploadPayload struct {
	FileName       string `json:"fileName"`
	MimeType       string `json:"mimeType"`
	FileData       string `json:"fileData"`
	CollectionName string `json:"collectionName"`
	SalesName      string `json:"salesName"`
}

type uploadResult struct {
	Status  string `json:"status"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

func (u *HTTPUploader) Upload(ctx context.Context, f File) (string, error) {
	payload := uploadPayload{
		FileName:       f.Name,
		MimeType:       f.MimeType,
		FileData:       dataURL(f.MimeType, f.Data),
		CollectionName: f.Collection.String(),
		SalesName:      f.Sales,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encode payload: %v", kpi.ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", kpi.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kpi.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", kpi.ErrUploadFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: endpoint returned %d", kpi.ErrUploadFailed, resp.StatusCode)
	}

	var result uploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", kpi.ErrUploadFailed, err)
	}
	if result.Status != "success" || result.URL == "" {
		msg := result.Message
		if msg == "" {
			msg = "upload rejected"
		}
		return "", fmt.Errorf("%w: %s", kpi.ErrUploadFailed, msg)
	}
	return result.URL, nil
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
