// Package server exposes the HTTP API: snapshot upload and bookkeeping,
// collection queries with filtering and pvp annotation, and read-only
// public sharing.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"pokedex-tracker/internal/constants"
	"pokedex-tracker/internal/domain"
	"pokedex-tracker/internal/service"
	"pokedex-tracker/internal/snapshot"

	"github.com/rs/zerolog"
)

type Server struct {
	uploads     *service.UploadService
	collections *service.CollectionService
	logger      zerolog.Logger
}

func New(uploads *service.UploadService, collections *service.CollectionService, logger zerolog.Logger) *Server {
	return &Server{
		uploads:     uploads,
		collections: collections,
		logger:      logger,
	}
}

// Register wires every route onto the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("GET /api/files/{userID}", s.handleListFiles)
	mux.HandleFunc("DELETE /api/file/{userID}/{fileID}", s.handleDeleteFile)
	mux.HandleFunc("GET /api/progress/{fileID}", s.handleProgress)
	mux.HandleFunc("GET /api/file/{userID}/{fileID}", s.handleGetFile)
	mux.HandleFunc("GET /api/public/file/{fileID}", s.handlePublicFile)
	mux.HandleFunc("GET /api/pvp/categories", s.handleCategories)
	mux.HandleFunc("GET /api/health", s.handleHealth)
}

// handleUpload accepts a multipart snapshot upload: the "file" part holds
// the payload, the "user_id" field names the owner.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "upload is not valid multipart form data")
		return
	}

	userID := strings.TrimSpace(r.FormValue("user_id"))
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	upload, err := s.uploads.Upload(r.Context(), userID, header.Filename, payload)
	if err != nil {
		var verr *snapshot.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("upload failed")
		s.writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	s.writeJSON(w, http.StatusCreated, uploadResponse(upload))
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.uploads.List(r.Context(), r.PathValue("userID"))
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to list uploads")
		s.writeError(w, http.StatusInternalServerError, "failed to list files")
		return
	}

	files := make([]map[string]any, 0, len(uploads))
	for _, u := range uploads {
		files = append(files, uploadResponse(u))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	err := s.uploads.Delete(r.Context(), r.PathValue("userID"), r.PathValue("fileID"))
	if errors.Is(err, sql.ErrNoRows) {
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to delete upload")
		s.writeError(w, http.StatusInternalServerError, "failed to delete file")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress := s.uploads.Progress(r.PathValue("fileID"))
	status := http.StatusOK
	if progress.Status == domain.ProgressNotFound {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, progress)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	s.serveCollection(w, r, r.PathValue("userID"), r.PathValue("fileID"))
}

// handlePublicFile serves a collection by file id alone, for shared
// read-only links. The owner is resolved server side.
func (s *Server) handlePublicFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("fileID")
	userID, err := s.uploads.ResolveOwner(r.Context(), fileID)
	if errors.Is(err, sql.ErrNoRows) {
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to resolve file owner")
		s.writeError(w, http.StatusInternalServerError, "failed to load file")
		return
	}
	s.serveCollection(w, r, userID, fileID)
}

func (s *Server) serveCollection(w http.ResponseWriter, r *http.Request, userID, fileID string) {
	q := r.URL.Query()

	opts := service.QueryOptions{
		Search:    q.Get("search"),
		OrderBy:   q.Get("order_by"),
		OrderDir:  q.Get("order_dir"),
		Unique:    boolParam(q.Get("unique")),
		PvP:       boolParam(q.Get("pvp")),
		Category:  q.Get("category"),
		BestTeams: boolParam(q.Get("best_teams")),
	}
	if opts.PvP {
		league, ok := domain.ParseLeague(q.Get("league"))
		if !ok {
			s.writeError(w, http.StatusBadRequest, "league must be one of great, ultra, master")
			return
		}
		opts.League = league
	}

	result, err := s.collections.Query(r.Context(), userID, fileID, opts)
	if errors.Is(err, service.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("file_id", fileID).Msg("collection query failed")
		s.writeError(w, http.StatusInternalServerError, "failed to load file")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"categories": s.collections.Categories()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func uploadResponse(u *domain.Upload) map[string]any {
	return map[string]any{
		"id":                u.ID,
		"original_filename": u.OriginalFilename,
		"logical_user":      u.LogicalUser,
		"logical_date":      u.LogicalDate,
		"total_records":     u.TotalRecords,
		"unknown_species":   u.UnknownSpecies,
		"enriched":          u.Enriched,
		"created_at":        u.CreatedAt,
	}
}

func boolParam(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
