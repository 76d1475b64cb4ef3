package service

import (
	"bytes"
	"context"
	"estudiapro_backend/internal/testutil"
	"estudiapro_backend/internal/util"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestStoreTracesUploads(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	cfg := testutil.Config()
	cfg.Storage.LocalPath = t.TempDir()
	storage := NewStorageService(cfg)

	tests := []struct {
		name     string
		filename string
		content  []byte
		wantErr  bool
	}{
		{name: "pdf accepted", filename: "apuntes.pdf", content: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")},
		{name: "audio rejected", filename: "clase.mp3", content: []byte("ID3\x03\x00\x00\x00\x00\x00\x00"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(recorder.Ended())
			stored, err := storage.Store(context.Background(), "resources", uploadHeader(t, tt.filename, tt.content))

			spans := recorder.Ended()
			require.Len(t, spans, before+1)
			span := spans[len(spans)-1]
			assert.Equal(t, "storage.store", span.Name())

			if tt.wantErr {
				assert.ErrorIs(t, err, util.ErrValidation)
				assert.Equal(t, codes.Error, span.Status().Code)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(stored.Key, "resources/"))
			_, statErr := os.Stat(filepath.Join(cfg.Storage.LocalPath, filepath.FromSlash(stored.Key)))
			assert.NoError(t, statErr)

			var key string
			for _, kv := range span.Attributes() {
				if kv.Key == "storage.key" {
					key = kv.Value.AsString()
				}
			}
			assert.Equal(t, stored.Key, key)
		})
	}
}
