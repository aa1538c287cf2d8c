// Package server exposes the sprite service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gogpu/spritekit"
	"github.com/gogpu/spritekit/internal/service"
	"github.com/gogpu/spritekit/internal/store"
)

// Server routes HTTP requests to a service.Service.
type Server struct {
	svc       *service.Service
	hub       *Hub
	logger    *slog.Logger
	maxUpload int64
	mux       *http.ServeMux
}

// New creates a Server. hub may be nil, in which case /ws is not served.
func New(svc *service.Service, hub *Hub, logger *slog.Logger, maxUpload int64) *Server {
	s := &Server{svc: svc, hub: hub, logger: logger, maxUpload: maxUpload, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /api/sprite", s.handleImport)
	s.mux.HandleFunc("GET /api/sprite/all", s.handleList)
	s.mux.HandleFunc("DELETE /api/sprite/delete/{name}", s.handleDelete)
	s.mux.HandleFunc("PUT /api/sprite/rename", s.handleRename)
	s.mux.HandleFunc("GET /api/sprite/sprite-storage/{path...}", s.handleSheet)
	s.mux.HandleFunc("GET /api/sprite/animations/{name}", s.handleAnimations)
	s.mux.HandleFunc("GET /api/sprite/normalize-sprite-sheet/{id}", s.handleNormalize)
	s.mux.HandleFunc("GET /api/sprite/flip-horizontal/{id}", s.handleFlip)
	s.mux.HandleFunc("GET /api/sprite/play/{name}", s.handlePlay)
	s.mux.HandleFunc("PUT /api/sprite/save-frame-rate/{id}/{rate}", s.handleFrameRate)
	s.mux.HandleFunc("PUT /api/sprite/hitbox/{id}", s.handleSaveHitbox)
	s.mux.HandleFunc("DELETE /api/sprite/hitbox/{id}", s.handleDeleteHitbox)
	s.mux.HandleFunc("GET /api/sprite/preview/{id}", s.handlePreview)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if hub != nil {
		s.mux.Handle("GET /ws", hub)
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves h on addr until ctx is done.
func Run(ctx context.Context, addr string, h http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, spritekit.ErrInvalidInput),
		errors.Is(err, spritekit.ErrUnsafeArchiveEntry),
		errors.Is(err, spritekit.ErrDecodeFailure):
		return http.StatusBadRequest
	case errors.Is(err, spritekit.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, spritekit.ErrDuplicateName):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: animation id %q", spritekit.ErrInvalidInput, r.PathValue("id"))
	}
	return id, nil
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: multipart field \"file\": %w", spritekit.ErrInvalidInput, err))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: read upload: %w", spritekit.ErrInvalidInput, err))
		return
	}
	info, err := s.svc.Import(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.List())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renameRequest struct {
	OldName string  `json:"oldName"`
	NewName string  `json:"newName"`
	Scale   float64 `json:"scale"`
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: rename body: %w", spritekit.ErrInvalidInput, err))
		return
	}
	info, err := s.svc.Rename(r.Context(), req.OldName, req.NewName, req.Scale)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.SheetFile(r.PathValue("path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := os.Open(p)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", spritekit.ErrNotFound, err))
		return
	}
	defer func() { _ = f.Close() }()
	fi, err := f.Stat()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filepath.Base(p)))
	http.ServeContent(w, r, filepath.Base(p), fi.ModTime(), f)
}

func (s *Server) handleAnimations(w http.ResponseWriter, r *http.Request) {
	infos, err := s.svc.Animations(r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	info, err := s.svc.Normalize(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Flip(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	play, err := s.svc.Play(r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, play)
}

func (s *Server) handleFrameRate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rate, err := strconv.Atoi(r.PathValue("rate"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: frame rate %q", spritekit.ErrInvalidInput, r.PathValue("rate")))
		return
	}
	info, err := s.svc.SetFrameRate(id, rate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSaveHitbox(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var h store.Hitbox
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&h); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: hitbox body: %w", spritekit.ErrInvalidInput, err))
		return
	}
	if _, err := s.svc.SetHitbox(id, h); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteHitbox(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.svc.DeleteHitbox(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	factor := 0
	if v := r.URL.Query().Get("scale"); v != "" {
		if factor, err = strconv.Atoi(v); err != nil || factor < 1 {
			s.writeError(w, r, fmt.Errorf("%w: scale %q", spritekit.ErrInvalidInput, v))
			return
		}
	}
	data, err := s.svc.Preview(id, factor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok", "sprites": len(s.svc.List())}
	if s.hub != nil {
		payload["ws_clients"] = s.hub.Clients()
	}
	writeJSON(w, http.StatusOK, payload)
}
