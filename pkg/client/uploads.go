package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// uploadFormField is the multipart field name the API reads the file from.
const uploadFormField = "file"

// UploadsService stores and retrieves uploaded files.
type UploadsService struct {
	c *Client
}

func (s *UploadsService) List(ctx context.Context, opts ListOptions) (*Page[Upload], error) {
	var page Page[Upload]
	if err := s.c.doJSON(ctx, http.MethodGet, "/uploads", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Upload stores a file under its sanitized original name. The content is
// buffered in memory; the API rejects files over its configured limit with
// ErrPayloadTooLarge.
func (s *UploadsService) Upload(ctx context.Context, filename string, content io.Reader) (*Upload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(uploadFormField, filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := s.c.send(ctx, http.MethodPost, "/uploads", nil, buf.Bytes(), mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	var up Upload
	if err := decode(operation(http.MethodPost, "/uploads"), resp, &up); err != nil {
		return nil, err
	}
	return &up, nil
}

// Download streams a stored file by its stored name. The caller must close
// the returned reader.
func (s *UploadsService) Download(ctx context.Context, storedName string) (io.ReadCloser, string, error) {
	path := "/uploads/" + url.PathEscape(storedName)
	resp, err := s.c.send(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer drain(resp)
		return nil, "", apiErrorFromResponse(operation(http.MethodGet, path), resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// Delete removes a stored file and its record. Accepts the upload's record
// ID or its stored name. Admin only.
func (s *UploadsService) Delete(ctx context.Context, idOrStoredName string) error {
	return s.c.doJSON(ctx, http.MethodDelete, "/uploads/"+url.PathEscape(idOrStoredName), nil, nil, nil)
}
