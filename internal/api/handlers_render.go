package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/mdattr/internal/parser"
	"github.com/dgallion1/mdattr/internal/pipeline"
)

// defaultFilename names documents posted as a raw body without ?filename=.
const defaultFilename = "document.md"

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	res, err := s.pipeline.Render(r.Context(), filename, data)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	etag := `"` + res.ContentHash + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, res.HTML)
}

func (s *Server) handleAST(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	tree, st, err := s.pipeline.Decorate(r.Context(), filename, data)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename":   filename,
		"attributes": st,
		"tree":       tree.Export(tree.Root()),
	})
}

func (s *Server) handleBatchRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, len(files))
	var inputs []pipeline.Input
	var slots []int
	for i, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results[i] = map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			}
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results[i] = map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			}
			continue
		}

		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			results[i] = map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			}
			continue
		}

		inputs = append(inputs, pipeline.Input{Filename: filename, Data: data})
		slots = append(slots, i)
	}

	for j, br := range s.pipeline.RenderBatch(r.Context(), inputs) {
		if br.Err != nil {
			results[slots[j]] = map[string]any{
				"filename": br.Filename,
				"error":    br.Err.Error(),
			}
			continue
		}
		results[slots[j]] = map[string]any{
			"filename":     br.Filename,
			"html":         br.Result.HTML,
			"content_hash": br.Result.ContentHash,
			"attributes":   br.Result.Attributes,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": results})
}

// readDocument reads the markdown source of a request: the "file" field of a
// multipart form, or else the raw body named by ?filename=. On failure the
// error response has already been written.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	var (
		filename string
		src      io.Reader
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return "", nil, false
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return "", nil, false
		}
		defer file.Close()

		filename = sanitizeFilename(header.Filename)
		src = file
	} else {
		filename = defaultFilename
		if name := r.URL.Query().Get("filename"); name != "" {
			filename = sanitizeFilename(name)
		}
		src = r.Body
	}

	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return "", nil, false
		}
		jsonError(w, "failed to read document", http.StatusBadRequest)
		return "", nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}

	return filename, data, true
}

func (s *Server) pipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		jsonError(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		s.log.Error("pipeline failed", "error", err)
		jsonError(w, "render failed", http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
