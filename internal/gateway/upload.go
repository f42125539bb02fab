package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/openrla/rlaclient/internal/model"
)

// FileKind selects which import endpoint confirms an uploaded file.
type FileKind string

const (
	FileBallotManifest FileKind = "BALLOT_MANIFEST"
	FileCVRExport      FileKind = "CVR_EXPORT"
)

// Upload phases. Surfaced distinctly so the caller can re-prompt for a
// fresh upload versus retrying only the import confirmation.
var (
	ErrUploadFailed = errors.New("file upload failed")
	ErrImportFailed = errors.New("file import failed")
)

// PhaseError tags a two-phase upload failure with the phase that failed
// while still unwrapping to the underlying gateway taxonomy.
type PhaseError struct {
	Phase error // ErrUploadFailed or ErrImportFailed
	Err   error
}

func (e *PhaseError) Error() string { return fmt.Sprintf("%v: %v", e.Phase, e.Err) }

func (e *PhaseError) Unwrap() error { return e.Err }

// Is matches both the phase tag and the wrapped failure taxonomy.
func (e *PhaseError) Is(target error) bool { return target == e.Phase }

// validHash guards against sending a malformed digest: 64 hex chars.
func validHash(h string) bool {
	if len(h) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}

// HashFile computes the hex SHA-256 digest of a file on disk.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// UploadFile performs phase one of the two-phase protocol: raw bytes plus
// the operator-supplied content hash. The server echoes the stored file's
// metadata, which the caller passes unchanged to ImportFile.
func (c *Client) UploadFile(ctx context.Context, kind FileKind, filename string, contents io.Reader, hash string) (*model.UploadedFile, error) {
	if !validHash(hash) {
		return nil, &CallError{Endpoint: "/upload-file", cause: ErrValidation,
			detail: "content hash must be a 64-character hex SHA-256 digest"}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, contents)
		}
		if err == nil {
			err = mw.WriteField("hash", hash)
		}
		if err == nil {
			err = mw.WriteField("file_type", string(kind))
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	var out model.UploadedFile
	if err := c.do(ctx, "POST", "/upload-file", pr, mw.FormDataContentType(), &out); err != nil {
		return nil, &PhaseError{Phase: ErrUploadFailed, Err: err}
	}
	return &out, nil
}

// ImportFile performs phase two: confirming the import using the metadata
// the server echoed from phase one.
func (c *Client) ImportFile(ctx context.Context, kind FileKind, file *model.UploadedFile) error {
	var path string
	switch kind {
	case FileBallotManifest:
		path = "/import-ballot-manifest"
	case FileCVRExport:
		path = "/import-cvr-export"
	default:
		return &CallError{Endpoint: "/import-file", cause: ErrValidation,
			detail: fmt.Sprintf("unknown file kind %q", kind)}
	}
	if err := c.post(ctx, path, file, nil); err != nil {
		return &PhaseError{Phase: ErrImportFailed, Err: err}
	}
	return nil
}
