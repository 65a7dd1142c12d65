package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/etdpk/etdclient/internal/clients/etdapi"
	"github.com/etdpk/etdclient/pkg/config"
	"github.com/etdpk/etdclient/pkg/logger"
)

const (
	uploadPath     = "/uploads"
	bulkUploadPath = "/uploads/multiple"
)

// Uploader is the multipart side of the backend client.
type Uploader interface {
	Upload(ctx context.Context, endpoint string, files []etdapi.UploadFile, fields map[string]string, progress chan<- int) etdapi.Result
}

// File is one document selected for upload.
type File struct {
	Name    string
	Content []byte
}

// UploadOutcome reports one file of a bulk upload. Failures are per file;
// one bad document does not abort the batch.
type UploadOutcome struct {
	Name string
	Err  error
}

type UploadService struct {
	cfg      config.UploadConfig
	fetch    Fetcher
	uploader Uploader
}

func NewUploadService(cfg config.UploadConfig, fetch Fetcher, uploader Uploader) *UploadService {
	return &UploadService{cfg: cfg, fetch: fetch, uploader: uploader}
}

func (s *UploadService) Validate(file File) error {
	return ValidateUploadFile(file.Name, int64(len(file.Content)), s.cfg.MaxFileSize)
}

// Upload pushes one document and streams whole percents on the returned
// channel; the channel is closed when the transfer ends either way. The
// error channel delivers exactly one value.
func (s *UploadService) Upload(ctx context.Context, applicationID string, file File) (<-chan int, <-chan error) {
	progress := make(chan int, 100)
	done := make(chan error, 1)

	if err := s.Validate(file); err != nil {
		close(progress)
		done <- err
		close(done)

		return progress, done
	}

	go func() {
		defer close(done)

		res := s.uploader.Upload(ctx, uploadPath,
			[]etdapi.UploadFile{{FieldName: "file", Name: file.Name, Content: file.Content}},
			map[string]string{"application_id": applicationID},
			progress,
		)

		done <- res.Err()
	}()

	return progress, done
}

// UploadInfo is the backend's record of a stored document.
type UploadInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	ContentType   string `json:"content_type"`
	ApplicationID string `json:"application_id"`
	UploadedAt    string `json:"uploaded_at"`
}

func (s *UploadService) Info(ctx context.Context, id string) (UploadInfo, error) {
	res := s.fetch.AuthFetch(ctx, http.MethodGet, uploadPath+"/"+url.PathEscape(id), nil)
	if err := res.Err(); err != nil {
		return UploadInfo{}, err
	}

	var info UploadInfo
	if err := res.Decode(&info); err != nil {
		return UploadInfo{}, fmt.Errorf("decode upload info: %w", err)
	}

	return info, nil
}

func (s *UploadService) Delete(ctx context.Context, id string) error {
	res := s.fetch.AuthFetch(ctx, http.MethodDelete, uploadPath+"/"+url.PathEscape(id), nil)

	return res.Err()
}

// UploadMany sends a batch with at most MaxConcurrency transfers in flight.
func (s *UploadService) UploadMany(ctx context.Context, applicationID string, files []File) []UploadOutcome {
	outcomes := make([]UploadOutcome, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.MaxConcurrency)

	for i, file := range files {
		group.Go(func() error {
			outcomes[i] = UploadOutcome{Name: file.Name}

			if err := s.Validate(file); err != nil {
				outcomes[i].Err = err
				return nil
			}

			res := s.uploader.Upload(groupCtx, bulkUploadPath,
				[]etdapi.UploadFile{{FieldName: "file", Name: file.Name, Content: file.Content}},
				map[string]string{"application_id": applicationID},
				nil,
			)

			outcomes[i].Err = res.Err()

			return nil
		})
	}

	_ = group.Wait()

	failed := 0

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}

	if failed > 0 {
		logger.FromContext(ctx).WarnContext(ctx, "bulk upload finished with failures",
			"total", len(files), "failed", failed)
	}

	return outcomes
}
