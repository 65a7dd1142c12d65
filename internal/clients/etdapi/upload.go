package etdapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadFile is one part of a multipart upload.
type UploadFile struct {
	FieldName string
	Name      string
	Content   []byte
}

// Upload posts files as multipart form data. When progress is non-nil, integer
// percents (0-100) are sent on it as the body is consumed and the channel is
// closed when the request finishes, success or not. Uploads are never retried.
func (c *Client) Upload(ctx context.Context, endpoint string, files []UploadFile, fields map[string]string, progress chan<- int) Result {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return Result{Error: fmt.Sprintf("write field: %v", err)}
		}
	}

	for _, file := range files {
		part, err := writer.CreateFormFile(file.FieldName, file.Name)
		if err != nil {
			return Result{Error: fmt.Sprintf("create form file: %v", err)}
		}

		if _, err := part.Write(file.Content); err != nil {
			return Result{Error: fmt.Sprintf("write form file: %v", err)}
		}
	}

	if err := writer.Close(); err != nil {
		return Result{Error: fmt.Sprintf("close multipart writer: %v", err)}
	}

	var body io.Reader = &buf

	if progress != nil {
		defer close(progress)

		body = &progressReader{
			reader:   &buf,
			total:    int64(buf.Len()),
			progress: progress,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return Result{Error: fmt.Sprintf("create request: %v", err)}
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return c.do(ctx, c.plain, req)
}

// progressReader reports whole percents of the body consumed, skipping
// repeats so a subscriber sees a strictly increasing sequence ending at 100.
type progressReader struct {
	reader   io.Reader
	total    int64
	sent     int64
	last     int
	progress chan<- int
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.sent += int64(n)

	if r.total > 0 {
		percent := int(r.sent * 100 / r.total)
		if percent > r.last {
			r.last = percent

			select {
			case r.progress <- percent:
			default:
			}
		}
	}

	return n, err
}
