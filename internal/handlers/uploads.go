package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jobnexus/apiserver/internal/storage"
)

const (
	maxMultipartMemory = 32 << 20
	maxImageBytes      = 5 << 20
	maxVideoBytes      = 50 << 20
	formFieldFile      = "file"
)

// imageTypes and videoTypes are the accepted sniffed content types per
// upload kind. The client-supplied Content-Type header is ignored.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var videoTypes = map[string]string{
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

// UploadHandler stores uploaded media in object storage and hands back
// the key and a public URL.
type UploadHandler struct {
	storage       *storage.Storage
	publicBaseURL string
}

// NewUploadHandler constructs a handler with the provided storage.
func NewUploadHandler(store *storage.Storage, publicBaseURL string) *UploadHandler {
	return &UploadHandler{storage: store, publicBaseURL: publicBaseURL}
}

// UploadRouter registers upload routes on the given router. All routes
// require authentication.
func UploadRouter(r chi.Router, store *storage.Storage, publicBaseURL string, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUploadHandler(store, publicBaseURL)

	r.Use(authMiddleware)
	r.Post("/image", handler.UploadImage)
	r.Post("/video", handler.UploadVideo)
}

func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "images", maxImageBytes, imageTypes)
}

func (h *UploadHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "videos", maxVideoBytes, videoTypes)
}

func (h *UploadHandler) upload(w http.ResponseWriter, r *http.Request, prefix string, limit int64, accepted map[string]string) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File[formFieldFile]
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one file is required")
		return
	}

	file, err := files[0].Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	data, err := readFileLimited(file, limit)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	// Sniff the real content type; the header the client sent is not
	// trusted.
	contentType := http.DetectContentType(data)
	ext, ok := accepted[contentType]
	if !ok {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported content type %s", contentType))
		return
	}

	key := path.Join(prefix, uuid.NewString()+ext)
	if err := h.storage.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		Key: key,
		URL: h.publicBaseURL + "/" + key,
	})
}

// UploadResponse reports where an uploaded object landed.
type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
