package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/Sternrassler/swecha-admin/pkg/entity"
)

const (
	recordsPath      = "/records/"
	recordUploadPath = "/records/upload"
)

// ListRecordsPage fetches one page of records.
func (c *Client) ListRecordsPage(ctx context.Context, skip, limit int) ([]entity.Record, error) {
	var records []entity.Record
	if err := c.getList(ctx, recordsPath, pageQuery(skip, limit), "records", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetRecord fetches a single record by uid.
func (c *Client) GetRecord(ctx context.Context, uid string) (*entity.Record, error) {
	var record entity.Record
	if err := c.getJSON(ctx, recordsPath+url.PathEscape(uid), nil, "records", &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UploadRecord sends a media file and its metadata as multipart/form-data.
func (c *Client) UploadRecord(ctx context.Context, up entity.RecordUpload) (Result, error) {
	if up.File == nil {
		return Result{}, fmt.Errorf("upload record: file is required")
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	fields := []struct{ name, value string }{
		{"title", up.Title},
		{"description", up.Description},
		{"media_type", up.MediaType},
		{"use_uid_filename", "false"},
		{"latitude", "0"},
		{"longitude", "0"},
		{"user_id", up.UserID},
		{"category_id", up.CategoryID},
	}
	for _, f := range fields {
		if err := form.WriteField(f.name, f.value); err != nil {
			return Result{}, fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, entity.SafeFilename(up.Filename)))
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return Result{}, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, up.File); err != nil {
		return Result{}, fmt.Errorf("copy file: %w", err)
	}
	if err := form.Close(); err != nil {
		return Result{}, fmt.Errorf("close multipart writer: %w", err)
	}

	status, _, err := c.call(ctx, http.MethodPost, recordUploadPath, nil, body, form.FormDataContentType(),
		"records", "File upload failed.", http.StatusOK, http.StatusCreated)
	if err != nil {
		return Result{StatusCode: status}, err
	}
	return Result{Message: "Record uploaded successfully.", StatusCode: status}, nil
}

// UpdateRecord replaces the editable fields of a record.
func (c *Client) UpdateRecord(ctx context.Context, uid string, req entity.RecordUpdate) (Result, error) {
	status, _, err := c.sendJSON(ctx, http.MethodPut, recordsPath+url.PathEscape(uid), req, "records", "Update failed.",
		http.StatusOK)
	if err != nil {
		return Result{StatusCode: status}, err
	}
	return Result{Message: "Record updated successfully.", StatusCode: status}, nil
}

// DeleteRecord removes a record.
func (c *Client) DeleteRecord(ctx context.Context, uid string) (Result, error) {
	status, _, err := c.sendJSON(ctx, http.MethodDelete, recordsPath+url.PathEscape(uid), nil, "records", "Delete failed.",
		http.StatusOK, http.StatusNoContent)
	if err != nil {
		return Result{StatusCode: status}, err
	}
	return Result{Message: "Record deleted successfully.", StatusCode: status}, nil
}
