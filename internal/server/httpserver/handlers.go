package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kstepanov/dormhub/internal/csvparse"
	"github.com/kstepanov/dormhub/internal/errs"
	"github.com/kstepanov/dormhub/internal/model"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// handleRegister creates a new account. Duplicate names fail without
// overwriting the existing record.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "empty name/password")
		return
	}
	id, err := s.auth.Register(r.Context(), req.Name, req.Password)
	if err != nil {
		s.log.Error("register failed", zap.String("name", req.Name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error registering user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// handleLogin authenticates and returns a session token. Unknown names and
// wrong passwords get the same response.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	tok, err := s.auth.Login(r.Context(), req.Name, req.Password, r.RemoteAddr)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUnauthorized):
			writeJSON(w, http.StatusUnauthorized, map[string]any{"auth": false, "token": nil})
		case errors.Is(err, errs.ErrRateLimited):
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"auth": false, "token": nil})
		default:
			s.log.Error("login failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "error logging in")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"auth": true, "token": tok.Value})
}

// handleUploadGroups persists a group batch and, only after the response is
// on the wire, announces the update to viewers.
func (s *Server) handleUploadGroups(w http.ResponseWriter, r *http.Request) {
	rows, err := decodeRows(r, csvparse.ParseGroups)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad upload payload")
		return
	}
	n, err := s.ingest.UploadGroups(r.Context(), rows)
	if !s.writeUploadResult(w, r, "groups", n, err) {
		return
	}
	if n > 0 {
		s.ingest.AnnounceGroups()
	}
}

// handleUploadHostels mirrors handleUploadGroups for the hostel dataset.
func (s *Server) handleUploadHostels(w http.ResponseWriter, r *http.Request) {
	rows, err := decodeRows(r, csvparse.ParseHostels)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad upload payload")
		return
	}
	n, err := s.ingest.UploadHostels(r.Context(), rows)
	if !s.writeUploadResult(w, r, "hostels", n, err) {
		return
	}
	if n > 0 {
		s.ingest.AnnounceHostels()
	}
}

// writeUploadResult sends the uploader's definitive answer. A failed write
// never reaches the announce step, so viewers only ever see successful
// updates. Returns true when the batch fully succeeded.
func (s *Server) writeUploadResult(w http.ResponseWriter, r *http.Request, kind string, n int, err error) bool {
	caller, _ := UserIDFromCtx(r.Context())
	if err != nil {
		s.log.Error("upload failed",
			zap.String("kind", kind),
			zap.String("user", caller.String()),
			zap.Int("rows_written", n),
			zap.Error(err),
		)
		if errors.Is(err, errs.ErrPartialWrite) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error": "partial write", "count": n,
			})
		} else {
			writeError(w, http.StatusInternalServerError, "error uploading "+kind)
		}
		return false
	}
	s.log.Info("upload accepted",
		zap.String("kind", kind),
		zap.String("user", caller.String()),
		zap.Int("count", n),
	)
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
	return true
}

// decodeRows accepts either a JSON array body or a multipart CSV file upload.
func decodeRows[T any](r *http.Request, parseCSV func(io.Reader) ([]T, error)) ([]T, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return parseCSV(f)
	}
	var rows []T
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	rows, err := s.ingest.ListGroups(r.Context())
	if err != nil {
		s.log.Error("list groups failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error listing groups")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Group{"groups": rows})
}

func (s *Server) handleListHostels(w http.ResponseWriter, r *http.Request) {
	rows, err := s.ingest.ListHostels(r.Context())
	if err != nil {
		s.log.Error("list hostels failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error listing hostels")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Hostel{"hostels": rows})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "store unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
