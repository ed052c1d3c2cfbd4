// SPDX-License-Identifier: MIT

// Package server exposes the job core over HTTP: submission, polling,
// result download, and the WebSocket event stream. It validates and
// delegates; all processing happens in the job manager.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"voiceforge/internal/config"
	"voiceforge/internal/job"
	"voiceforge/internal/log"
	"voiceforge/internal/transport"
	"voiceforge/internal/voice"
	"voiceforge/pkg/build"
)

// Server is the HTTP surface over a job manager.
type Server struct {
	cfg     config.ServerConfig
	manager *job.Manager
	hub     *transport.Hub
	mux     *http.ServeMux
}

// New builds the server and wires the manager's events into the
// WebSocket hub.
func New(cfg config.ServerConfig, manager *job.Manager) *Server {
	s := &Server{
		cfg:     cfg,
		manager: manager,
		hub:     transport.NewHub(cfg.EventBufferSize),
		mux:     http.NewServeMux(),
	}
	manager.Subscribe(func(e job.Event) {
		s.hub.Publish(e)
	})

	s.mux.HandleFunc("POST /api/convert", s.handleConvert)
	s.mux.HandleFunc("POST /api/clone", s.handleClone)
	s.mux.HandleFunc("GET /api/jobs/{id}", s.handleJobStatus)
	s.mux.HandleFunc("GET /api/jobs/{id}/result", s.handleJobResult)
	s.mux.HandleFunc("GET /api/speakers", s.handleSpeakers)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /ws", s.hub)
	return s
}

// Handler returns the routable handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	log.Infof("server: listening on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Close shuts down the event hub.
func (s *Server) Close() error {
	return s.hub.Close()
}

type submitResponse struct {
	JobID  string     `json:"job_id"`
	Status job.Status `json:"status"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	payload, err := formFileBytes(r, "audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	strength, err := formUnitFloat(r, "conversion_strength", 0.8)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	speaker := r.FormValue("target_speaker")
	if speaker == "" {
		speaker = voice.DefaultSpeakerID
	}

	submitted, err := s.manager.SubmitConvert(payload, speaker, strength)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to submit job")
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{JobID: submitted.ID, Status: submitted.Status})
}

func (s *Server) handleClone(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(2 * s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	reference, err := formFileBytes(r, "reference")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, err := formFileBytes(r, "target")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	similarity, err := formUnitFloat(r, "similarity_threshold", 0.8)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	submitted, err := s.manager.SubmitClone(reference, target, similarity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to submit job")
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{JobID: submitted.ID, Status: submitted.Status})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.manager.Status(r.PathValue("id"))
	if errors.Is(err, job.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.manager.Status(r.PathValue("id"))
	if errors.Is(err, job.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	if snapshot.Status != job.StatusCompleted || snapshot.ResultRef == "" {
		writeError(w, http.StatusConflict, "job has no result")
		return
	}

	path, err := s.manager.ResultPath(snapshot.ResultRef)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "invalid result reference")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, path)
}

func (s *Server) handleSpeakers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"speakers": voice.SpeakerIDs()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	info := build.GetInfo()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    info.Name,
		"version": info.Version,
	})
}

func formFileBytes(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %q file field", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q upload", field)
	}
	return data, nil
}

func formUnitFloat(r *http.Request, field string, fallback float64) (float64, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return 0, fmt.Errorf("%q must be a number in [0, 1]", field)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("server: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
