package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-coach/internal/types"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	userID, err := userFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.StartSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.svc.Interview.StartSession(r.Context(), userID, req.Profession)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, session)
}

// ownedSession loads the {id} session and checks the caller owns it.
func (s *Server) ownedSession(r *http.Request) (*types.InterviewSession, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	session, err := s.svc.Interview.GetSession(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := authorize(r, session.UserID); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.ownedSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, session)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.ownedSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	session, err = s.svc.Interview.Cancel(r.Context(), session.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, session)
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	session, err := s.ownedSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.StartRoundRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	round, err := s.svc.Interview.StartRound(r.Context(), session.ID, req.Difficulty, req.FocusAreas)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, round)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	session, err := s.ownedSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	roundID, err := pathID(r, "round_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.SubmitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	answer, err := s.svc.Interview.SubmitAnswer(r.Context(), session.ID, roundID, req.QuestionID, req.Answer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, answer)
}

func (s *Server) handleCompleteRound(w http.ResponseWriter, r *http.Request) {
	session, err := s.ownedSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	roundID, err := pathID(r, "round_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err = s.svc.Interview.CompleteRound(r.Context(), session.ID, roundID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, session)
}

func (s *Server) handleFollowUp(w http.ResponseWriter, r *http.Request) {
	session, err := s.ownedSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.FollowUpRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var roundID *uuid.UUID
	if req.RoundID != "" {
		id, err := uuid.Parse(req.RoundID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		roundID = &id
	}

	followUp, err := s.svc.Interview.SessionFollowUp(r.Context(), session.ID, roundID, req.FocusArea)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, followUp)
}
