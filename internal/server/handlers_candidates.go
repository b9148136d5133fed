package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/hiring-coach/internal/evaluation"
	"github.com/jonathan/hiring-coach/internal/logger"
	"github.com/jonathan/hiring-coach/internal/types"
)

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCandidateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	candidate, err := s.svc.Evaluation.CreateCandidate(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, candidate)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.svc.Evaluation.ListCandidates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	candidate, err := s.svc.Evaluation.GetCandidate(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, candidate)
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Evaluation.DeleteCandidate(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttachResume(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	up, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resume, err := s.svc.Evaluation.AttachResume(r.Context(), id, toDocument(up))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resume)
}

func (s *Server) handleAttachInterview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	up, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	transcript, err := s.svc.Evaluation.AttachInterview(r.Context(), id, toDocument(up))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, transcript)
}

func toDocument(up upload) evaluation.Document {
	return evaluation.Document{
		Text:            up.Text,
		Data:            up.Data,
		FileName:        up.FileName,
		MimeType:        up.MimeType,
		Interviewer:     up.Interviewer,
		DurationMinutes: up.DurationMinutes,
	}
}

// handleEvaluate runs the evaluation pipeline, or queues it with ?async=true.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		requestID := w.Header().Get("X-Request-ID")
		if err := s.svc.Evaluation.Enqueue(r.Context(), id, requestID); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusAccepted, map[string]string{
			"candidate_id": id.String(),
			"request_id":   requestID,
			"status":       "queued",
		})
		return
	}

	result, err := s.svc.Evaluation.Evaluate(r.Context(), id, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleEvaluateStream runs the evaluation pipeline and streams stage
// progress as server-sent events.
func (s *Server) handleEvaluateStream(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.svc.Evaluation.GetCandidate(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log := logger.Ctx(r.Context())
	result, err := s.svc.Evaluation.Evaluate(r.Context(), id, func(event evaluation.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			log.Warn().Err(err).Msg("failed to write progress event")
		}
	})
	if err != nil {
		status := HTTPStatus(err)
		log.Warn().Err(err).Int("status", status).Msg("streamed evaluation failed")
		sse.WriteError(status, errorMessage(err, status))
		return
	}
	sse.WriteComplete(result)
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.svc.Evaluation.GetEvaluation(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.svc.Evaluation.ListEvaluations(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"evaluations": summaries,
		"count":       len(summaries),
	})
}
