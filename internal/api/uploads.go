// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ManuGH/paramlab/internal/fsutil"
	"github.com/ManuGH/paramlab/internal/log"
	"github.com/ManuGH/paramlab/internal/metrics"
	"github.com/ManuGH/paramlab/internal/params"
)

type filesParams struct {
	Token string              `form:"token"`
	Files []params.UploadFile `file:"files" doc:"A list of files read as bytes."`
}

type filesResult struct {
	Message   string  `json:"message,omitempty"`
	Token     string  `json:"token,omitempty"`
	FileSizes []int64 `json:"file_sizes,omitempty"`
}

func (s *Server) createFiles(w http.ResponseWriter, r *http.Request) error {
	var p filesParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	if len(p.Files) == 0 {
		writeJSON(w, http.StatusOK, filesResult{Message: "No file sent"})
		return nil
	}

	sizes := make([]int64, 0, len(p.Files))
	for _, f := range p.Files {
		data, err := f.Bytes()
		if err != nil {
			return fmt.Errorf("read upload %q: %w", f.Filename, err)
		}
		sizes = append(sizes, int64(len(data)))
	}
	writeJSON(w, http.StatusOK, filesResult{Token: p.Token, FileSizes: sizes})
	return nil
}

type uploadParams struct {
	File *params.UploadFile `file:"file" doc:"A file read as UploadFile."`
}

type uploadResult struct {
	Message  string `json:"message,omitempty"`
	Filename string `json:"filename,omitempty"`
}

func (s *Server) createUploadFile(w http.ResponseWriter, r *http.Request) error {
	var p uploadParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	if p.File == nil {
		writeJSON(w, http.StatusOK, uploadResult{Message: "No upload file sent"})
		return nil
	}
	if s.cfg.UploadsDir != "" {
		if err := s.persistUpload(r.Context(), *p.File); err != nil {
			return err
		}
	}
	writeJSON(w, http.StatusOK, uploadResult{Filename: p.File.Filename})
	return nil
}

// persistUpload stores f under the uploads directory, replacing any file of
// the same sanitised name.
func (s *Server) persistUpload(ctx context.Context, f params.UploadFile) error {
	name := fsutil.SanitizeFilename(f.Filename)
	path, err := fsutil.ConfineRelPath(s.cfg.UploadsDir, name)
	if err != nil {
		return fmt.Errorf("upload path for %q: %w", f.Filename, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open upload %q: %w", f.Filename, err)
	}
	defer func() { _ = src.Close() }()

	n, err := fsutil.WriteAtomic(ctx, path, src)
	if err != nil {
		return fmt.Errorf("store upload %q: %w", f.Filename, err)
	}
	metrics.RecordUploadStored(n)
	logger := log.WithComponentFromContext(ctx, "api")
	logger.Info().
		Str(log.FieldEvent, "upload.stored").
		Str("filename", f.Filename).
		Str("path", path).
		Int64(log.FieldBytes, n).
		Msg("upload stored")
	return nil
}
