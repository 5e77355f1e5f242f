package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/dosewell/dosewell/internal/auth"
	"github.com/dosewell/dosewell/internal/media"
	"github.com/dosewell/dosewell/internal/store"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type MediaHandler struct {
	storage         media.Storage
	supplementStore *store.SupplementStore
	intakeStore     *store.IntakeStore
	maxUpload       int64
	logger          *slog.Logger
}

func NewMediaHandler(storage media.Storage, ss *store.SupplementStore, is *store.IntakeStore, maxUpload int64, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		storage:         storage,
		supplementStore: ss,
		intakeStore:     is,
		maxUpload:       maxUpload,
		logger:          logger,
	}
}

// readUpload extracts the "file" part of a multipart form, enforcing the
// upload size cap and the image extension allowlist.
func (h *MediaHandler) readUpload(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
			return nil, "", false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field is required"})
		return nil, "", false
	}

	ext := strings.ToLower(path.Ext(header.Filename))
	if !allowedImageExts[ext] {
		file.Close()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported image type"})
		return nil, "", false
	}
	return file, header.Filename, true
}

// UploadSupplementImage stores an image for the supplement and records its
// serving URL.
func (h *MediaHandler) UploadSupplementImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	sp, err := h.supplementStore.GetByID(id)
	if err != nil {
		h.logger.Error("upload image lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}
	if sp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "supplement not found"})
		return
	}
	if sp.UserID != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "supplement belongs to another account"})
		return
	}

	file, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	key := media.NewKey("supplements", filename)
	contentType := mime.TypeByExtension(path.Ext(key))
	if err := h.storage.Put(r.Context(), key, contentType, file); err != nil {
		h.logger.Error("upload image store", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}

	url := "/media/" + key
	if err := h.supplementStore.SetImageURL(id, url); err != nil {
		h.logger.Error("upload image record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"image_url": url})
}

// UploadIntakePhoto attaches a photo confirmation to an intake record.
func (h *MediaHandler) UploadIntakePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	intake, err := h.intakeStore.GetByID(id)
	if err != nil {
		h.logger.Error("upload photo lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}
	if intake == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "intake not found"})
		return
	}
	if intake.UserID != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "intake belongs to another account"})
		return
	}

	file, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	key := media.NewKey("intakes", filename)
	contentType := mime.TypeByExtension(path.Ext(key))
	if err := h.storage.Put(r.Context(), key, contentType, file); err != nil {
		h.logger.Error("upload photo store", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}

	url := "/media/" + key
	if err := h.intakeStore.SetPhotoConfirmation(id, url); err != nil {
		h.logger.Error("upload photo record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"photo_confirmation": url})
}

// Serve streams a stored object back to the client.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	body, contentType, err := h.storage.Get(r.Context(), key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer body.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("serve media", "error", err)
	}
}
