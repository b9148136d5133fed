package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-coach/internal/types"
)

// handleRegister creates a coaching user and, with auth enabled, returns a token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.svc.Coaching.Register(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.loginResponse(w, r, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.svc.Coaching.Login(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.loginResponse(w, r, http.StatusOK, user)
}

func (s *Server) loginResponse(w http.ResponseWriter, r *http.Request, status int, user *types.User) {
	resp := types.LoginResponse{User: user.Public()}
	if s.jwt != nil {
		token, err := s.jwt.GenerateToken(user.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Token = token
	}
	s.jsonResponse(w, status, resp)
}

// userFromPath parses the {id} user parameter and checks the caller owns it.
func userFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return uuid.Nil, err
	}
	return id, authorize(r, id)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := s.svc.Coaching.GetUser(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user.Public())
}

func (s *Server) handleUploadCV(w http.ResponseWriter, r *http.Request) {
	id, err := userFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	up, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	analysis, err := s.svc.Coaching.UploadCV(r.Context(), id, up.Upload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, analysis)
}

func (s *Server) handleGetCVAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	analysis, err := s.svc.Coaching.GetCVAnalysis(r.Context(), id)
	if err == nil {
		err = authorize(r, analysis.UserID)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.RecommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	existing, err := s.svc.Coaching.GetCVAnalysis(r.Context(), id)
	if err == nil {
		err = authorize(r, existing.UserID)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	analysis, err := s.svc.Coaching.AttachRecommendations(r.Context(), id, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

func (s *Server) handleJobFit(w http.ResponseWriter, r *http.Request) {
	id, err := userFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.JobFitRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.svc.Coaching.JobFit(r.Context(), id, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, report)
}

func (s *Server) handleListJobFits(w http.ResponseWriter, r *http.Request) {
	id, err := userFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.svc.Coaching.GetUser(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	reports, err := s.svc.Coaching.ListJobFits(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"job_fits": reports,
		"count":    len(reports),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := userFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dash, err := s.svc.Coaching.Dashboard(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, dash)
}
