// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package params

import (
	"fmt"
	"io"
	"mime/multipart"
)

// UploadFile is one file part of a multipart request.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64

	header *multipart.FileHeader
}

func newUploadFile(fh *multipart.FileHeader) UploadFile {
	return UploadFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		header:      fh,
	}
}

// Open returns a reader over the file content. The caller closes it.
func (f UploadFile) Open() (multipart.File, error) {
	if f.header == nil {
		return nil, fmt.Errorf("upload %q: no content", f.Filename)
	}
	return f.header.Open()
}

// Bytes reads the whole file into memory.
func (f UploadFile) Bytes() ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
