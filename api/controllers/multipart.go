package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/uniformhub/gateway/internal/media"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
)

// multipartMemory is the in-memory part of a parsed form; larger files spill to disk.
const multipartMemory = 8 << 20

// parseMultipart bounds the request body and parses it as multipart form data.
// A request that is not multipart carries no files and is accepted.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large").
				WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}
	return nil
}

// formFiles reads every uploaded file keyed by its form field name. When a
// field carries several files only the first is kept.
func formFiles(r *http.Request) (map[string]media.File, error) {
	out := map[string]media.File{}
	if r.MultipartForm == nil {
		return out, nil
	}
	for field, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		f, err := readPart(field, headers[0])
		if err != nil {
			return nil, err
		}
		out[field] = f
	}
	return out, nil
}

// fieldFiles reads every file uploaded under one form field, in order.
func fieldFiles(r *http.Request, field string) ([]media.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	out := make([]media.File, 0, len(headers))
	for _, h := range headers {
		f, err := readPart(field, h)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func readPart(slot string, header *multipart.FileHeader) (media.File, error) {
	src, err := header.Open()
	if err != nil {
		return media.File{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable file")
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return media.File{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable file")
	}
	return media.File{Slot: slot, Name: header.Filename, Data: data}, nil
}
