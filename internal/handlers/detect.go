package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/shelfscan/shelfscan/internal/detector"
	"github.com/shelfscan/shelfscan/internal/models"
)

// maxUploadBytes caps uploaded photo size at 10MB
const maxUploadBytes = 10 * 1024 * 1024

// HandleDetect runs book detection on an uploaded photo or a remote image URL
func (h *Handler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLDetect(w, r)
		return
	}

	h.handleUploadDetect(w, r)
}

func (h *Handler) handleURLDetect(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
	}

	if err := decodeJSONBody(r, &request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	sessionID := fmt.Sprintf("url_%d", time.Now().Unix())
	session := h.runDetection(r, sessionID, "url", detector.ImageFromURL(request.ImageURL))

	h.writeJSON(w, map[string]any{
		"session_id": sessionID,
		"result":     session.Result,
		"source":     "url",
	})
}

func (h *Handler) handleUploadDetect(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("files")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if len(imageData) >= maxUploadBytes {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	// Use filename (without extension) as session name, with timestamp for uniqueness
	baseFilename := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	sessionID := fmt.Sprintf("%s_%d", baseFilename, time.Now().Unix())

	session := h.runDetection(r, sessionID, "upload", detector.ImageFromBytes(imageData))

	h.writeJSON(w, map[string]any{
		"session_id": sessionID,
		"result":     session.Result,
		"source":     "upload",
	})
}

func (h *Handler) runDetection(r *http.Request, sessionID, source string, img detector.Image) *models.DetectionSession {
	slog.Info("Running detection", "session_id", sessionID, "source", source, "strategy", h.strategy)

	result := h.detector.DetectBooks(r.Context(), img)

	session := &models.DetectionSession{
		ID:        sessionID,
		Source:    source,
		Strategy:  h.strategy,
		Model:     h.model,
		Result:    result,
		CreatedAt: time.Now(),
	}
	h.sessionStore.Set(sessionID, session)

	slog.Info("Detection finished", "session_id", sessionID, "books", len(result.Books), "message", result.Message)
	return session
}
