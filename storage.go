package supasaas

import (
	"bytes"
	"os"

	storage_go "github.com/supabase-community/storage-go"

	"github.com/ashrobertsdragon/SupaSaaS/logging"
)

// DefaultSignedURLExpiry is the signed URL lifetime in seconds used when
// the caller passes a non-positive expiry.
const DefaultSignedURLExpiry = 3600

// EmptyFiles returns the sentinel file list ListFiles hands back on
// failure: a single zero-value entry, structurally present but carrying no
// data. A fresh slice is returned on every call.
func EmptyFiles() []storage_go.FileObject {
	return []storage_go.FileObject{{}}
}

// Storage wraps the object storage operations on the anonymous-tier
// handle. The storage SDK exposes no context support, so these methods
// take none.
type Storage struct {
	client *Client
	log    logging.Func
}

// NewStorage builds the storage facade on top of client.
func NewStorage(client *Client, opts ...Option) *Storage {
	s := newSettings(opts...)
	return &Storage{client: client, log: s.log}
}

// UploadFile stores content at uploadPath in bucket. On failure the raw
// bytes never reach the log line; the logger masks the file_content field.
func (s *Storage) UploadFile(bucket, uploadPath string, content []byte, mimetype string) bool {
	fail := func(err error) bool {
		s.log("error", "upload file", err,
			logging.F("bucket", bucket),
			logging.F("upload_path", uploadPath),
			logging.F("file_content", content),
			logging.F("file_mimetype", mimetype))
		return false
	}

	storage := s.client.SelectStorage(false)
	if storage == nil {
		return fail(ErrClientNotInitialized)
	}

	_, err := storage.UploadFile(bucket, uploadPath, bytes.NewReader(content), storage_go.FileOptions{ContentType: &mimetype})
	if err != nil {
		return fail(err)
	}
	return true
}

// DeleteFile removes the object at filePath from bucket.
func (s *Storage) DeleteFile(bucket, filePath string) bool {
	fail := func(err error) bool {
		s.log("error", "delete file", err,
			logging.F("bucket", bucket),
			logging.F("file_path", filePath))
		return false
	}

	storage := s.client.SelectStorage(false)
	if storage == nil {
		return fail(ErrClientNotInitialized)
	}

	if _, err := storage.RemoveFile(bucket, []string{filePath}); err != nil {
		return fail(err)
	}
	return true
}

// DownloadFile writes the object at downloadPath in bucket to the local
// destination path. Storage and I/O failures are both logged.
func (s *Storage) DownloadFile(bucket, downloadPath, destination string) bool {
	fail := func(err error) bool {
		s.log("error", "download file", err,
			logging.F("bucket", bucket),
			logging.F("download_path", downloadPath),
			logging.F("destination_path", destination))
		return false
	}

	storage := s.client.SelectStorage(false)
	if storage == nil {
		return fail(ErrClientNotInitialized)
	}

	out, err := os.Create(destination)
	if err != nil {
		return fail(err)
	}

	data, err := storage.DownloadFile(bucket, downloadPath)
	if err != nil {
		out.Close()
		return fail(err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fail(err)
	}
	if err := out.Close(); err != nil {
		return fail(err)
	}
	return true
}

// ListFiles lists the bucket root (empty folder) or a named folder inside
// it. On failure it returns EmptyFiles.
func (s *Storage) ListFiles(bucket, folder string) []storage_go.FileObject {
	fail := func(err error) []storage_go.FileObject {
		s.log("error", "list files", err, logging.F("bucket", bucket))
		return EmptyFiles()
	}

	storage := s.client.SelectStorage(false)
	if storage == nil {
		return fail(ErrClientNotInitialized)
	}

	files, err := storage.ListFiles(bucket, folder, storage_go.FileSearchOptions{})
	if err != nil {
		return fail(err)
	}
	return files
}

// CreateSignedURL issues a signed download URL for the object at
// downloadPath. A non-positive expiresIn selects DefaultSignedURLExpiry.
// On failure it returns the empty string.
func (s *Storage) CreateSignedURL(bucket, downloadPath string, expiresIn int) string {
	if expiresIn <= 0 {
		expiresIn = DefaultSignedURLExpiry
	}
	fail := func(err error) string {
		s.log("error", "create signed url", err,
			logging.F("bucket", bucket),
			logging.F("download_path", downloadPath),
			logging.F("expires_in", expiresIn))
		return ""
	}

	storage := s.client.SelectStorage(false)
	if storage == nil {
		return fail(ErrClientNotInitialized)
	}

	resp, err := storage.CreateSignedUrl(bucket, downloadPath, expiresIn)
	if err != nil {
		return fail(err)
	}
	return resp.SignedURL
}
