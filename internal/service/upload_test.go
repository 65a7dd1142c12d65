package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/etdpk/etdclient/internal/clients/etdapi"
	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/pkg/config"
)

// fakeUploader records concurrency and feeds the progress channel.
type fakeUploader struct {
	mu         sync.Mutex
	inFlight   atomic.Int32
	maxSeen    atomic.Int32
	delay      time.Duration
	fields     map[string]string
	lastResult etdapi.Result
}

func (u *fakeUploader) Upload(_ context.Context, _ string, _ []etdapi.UploadFile, fields map[string]string, progress chan<- int) etdapi.Result {
	current := u.inFlight.Add(1)
	defer u.inFlight.Add(-1)

	for {
		seen := u.maxSeen.Load()
		if current <= seen || u.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}

	if u.delay > 0 {
		time.Sleep(u.delay)
	}

	u.mu.Lock()
	u.fields = fields
	res := u.lastResult
	u.mu.Unlock()

	if progress != nil {
		for _, p := range []int{25, 50, 100} {
			progress <- p
		}
		close(progress)
	}

	if res.Status == 0 && res.Error == "" {
		return etdapi.Result{Success: true, Status: 200}
	}

	return res
}

func newUploadConfig() config.UploadConfig {
	return config.UploadConfig{MaxFileSize: 1 << 20, MaxConcurrency: 3}
}

func TestUploadService_Validate(t *testing.T) {
	t.Parallel()

	svc := NewUploadService(newUploadConfig(), nil, &fakeUploader{})

	tests := []struct {
		name string
		file File
		want error
	}{
		{name: "pdf accepted", file: File{Name: "passport.pdf", Content: []byte("x")}},
		{name: "jpeg accepted", file: File{Name: "photo.JPEG", Content: []byte("x")}},
		{name: "executable rejected", file: File{Name: "virus.exe", Content: []byte("x")}, want: entity.ErrFileType},
		{name: "oversize rejected", file: File{Name: "big.pdf", Content: make([]byte, 2<<20)}, want: entity.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := svc.Validate(tt.file)
			if tt.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestUploadService_Upload_StreamsProgress(t *testing.T) {
	t.Parallel()

	uploader := &fakeUploader{}
	svc := NewUploadService(newUploadConfig(), nil, uploader)

	progress, done := svc.Upload(context.Background(), "app-1", File{Name: "scan.pdf", Content: []byte("data")})

	var percents []int
	for p := range progress {
		percents = append(percents, p)
	}

	require.NoError(t, <-done)
	require.Equal(t, []int{25, 50, 100}, percents)
	require.Equal(t, "app-1", uploader.fields["application_id"])
}

func TestUploadService_Upload_InvalidFileFailsWithoutNetwork(t *testing.T) {
	t.Parallel()

	uploader := &fakeUploader{}
	svc := NewUploadService(newUploadConfig(), nil, uploader)

	progress, done := svc.Upload(context.Background(), "app-1", File{Name: "notes.txt", Content: []byte("x")})

	_, open := <-progress
	require.False(t, open)
	require.ErrorIs(t, <-done, entity.ErrFileType)
	require.Zero(t, uploader.maxSeen.Load())
}

func TestUploadService_UploadMany_ThrottlesToThree(t *testing.T) {
	t.Parallel()

	uploader := &fakeUploader{delay: 20 * time.Millisecond}
	svc := NewUploadService(newUploadConfig(), nil, uploader)

	files := make([]File, 9)
	for i := range files {
		files[i] = File{Name: "doc.pdf", Content: []byte("x")}
	}

	outcomes := svc.UploadMany(context.Background(), "app-1", files)
	require.Len(t, outcomes, 9)

	for _, outcome := range outcomes {
		require.NoError(t, outcome.Err)
	}

	require.LessOrEqual(t, uploader.maxSeen.Load(), int32(3))
	require.Greater(t, uploader.maxSeen.Load(), int32(1))
}

func TestUploadService_UploadMany_PartialFailures(t *testing.T) {
	t.Parallel()

	uploader := &fakeUploader{}
	svc := NewUploadService(newUploadConfig(), nil, uploader)

	outcomes := svc.UploadMany(context.Background(), "app-1", []File{
		{Name: "ok.pdf", Content: []byte("x")},
		{Name: "bad.exe", Content: []byte("x")},
		{Name: "also-ok.png", Content: []byte("x")},
	})

	require.NoError(t, outcomes[0].Err)
	require.ErrorIs(t, outcomes[1].Err, entity.ErrFileType)
	require.NoError(t, outcomes[2].Err)
}

func TestUploadService_InfoAndDelete(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	auth := NewAuthManager(newTestConfig(), api, newMemoryTokenStore(), &fakeNav{})
	svc := NewUploadService(newUploadConfig(), auth, &fakeUploader{})

	api.respond("/uploads/doc-1", jsonResult(200,
		`{"id":"doc-1","name":"passport.pdf","size":1024,"application_id":"app-1"}`))

	info, err := svc.Info(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Equal(t, "passport.pdf", info.Name)
	require.Equal(t, int64(1024), info.Size)

	require.NoError(t, svc.Delete(context.Background(), "doc-1"))
	require.Contains(t, api.calls, "DELETE /uploads/doc-1")

	api.respond("/uploads/missing", errorResult(404, "upload not found"))

	_, err = svc.Info(context.Background(), "missing")
	require.ErrorIs(t, err, entity.ErrNotFound)
}
