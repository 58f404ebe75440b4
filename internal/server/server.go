package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"transcript-fetcher/internal/jobs"
	"transcript-fetcher/internal/service"
	"transcript-fetcher/pkg/log"
)

// Server exposes the two operations of the acquisition core over JSON HTTP:
// starting an acquisition and polling a job handle.
type Server struct {
	coordinator *service.Coordinator
	reconciler  *service.Reconciler
}

func New(coordinator *service.Coordinator, reconciler *service.Reconciler) *Server {
	return &Server{coordinator: coordinator, reconciler: reconciler}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transcripts", s.handleAcquire)
	mux.HandleFunc("GET /api/transcripts/jobs/{id}", s.handlePoll)
	return mux
}

type acquireRequest struct {
	VideoID string `json:"video_id"`
}

func (s *Server) handleAcquire(w http.ResponseWriter, r *http.Request) {
	var req acquireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &service.Result{
			Status:  service.StatusError,
			Message: "request body must be JSON with a video_id field",
		})
		return
	}

	result, err := s.coordinator.Acquire(r.Context(), req.VideoID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidVideoID) {
			writeJSON(w, http.StatusBadRequest, &service.Result{
				Status:  service.StatusError,
				Message: "unrecognized video identifier or URL",
			})
			return
		}
		log.Error("acquire for %q failed: %v", req.VideoID, err)
		writeJSON(w, http.StatusInternalServerError, &service.Result{
			Status:  service.StatusError,
			Message: "something went wrong, please try again",
		})
		return
	}

	status := http.StatusOK
	if result.Status == service.StatusProcessing {
		// The transcript is not ready yet; the job handle is.
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	result, err := s.reconciler.Poll(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, &service.Result{
				Status:  service.StatusError,
				Message: "job not found",
			})
			return
		}
		log.Error("poll for job %q failed: %v", jobID, err)
		writeJSON(w, http.StatusInternalServerError, &service.Result{
			Status:  service.StatusError,
			Message: "something went wrong, please try again",
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body *service.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
