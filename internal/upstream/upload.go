package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

const uploadBase = "/api/upload"

// TokenSource yields the raw persisted bearer token for a user. The upload
// client deliberately reads this store instead of the per-request session:
// the two can desynchronize (sign-out clears one but not the other) and the
// observed product behavior is preserved rather than papered over.
type TokenSource interface {
	Token(ctx context.Context, userID string) (string, error)
}

// UploadClient sends multipart image uploads to the backend.
type UploadClient struct {
	c      *Client
	tokens TokenSource
}

// NewUploadClient constructs an UploadClient.
func NewUploadClient(c *Client, tokens TokenSource) *UploadClient {
	return &UploadClient{c: c, tokens: tokens}
}

// UploadImage streams the image under the "image" form field and returns
// {url, publicId}.
func (u *UploadClient) UploadImage(ctx context.Context, userID, filename string, content io.Reader) (*models.UploadResult, error) {
	token, err := u.tokens.Token(ctx, userID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no stored upload credential")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build multipart body")
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read upload content")
	}
	if err := writer.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.c.BaseURL()+uploadBase, &buf)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := u.c.HTTPClient().Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = json.Unmarshal(raw, &eb)
		return nil, appErrors.FromStatus(resp.StatusCode, eb.Message)
	}

	var out models.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode upload response")
	}
	return &out, nil
}
