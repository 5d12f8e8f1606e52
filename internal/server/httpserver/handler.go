package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/userkeeper/internal/server/services"
	"github.com/dmitrijs2005/userkeeper/internal/timex"
	"github.com/gorilla/mux"
)

func (s *HTTPServer) getAllUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.FindAll(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) getAllUsersByRange(w http.ResponseWriter, r *http.Request) {
	from, ok := dateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := dateParam(w, r, "to")
	if !ok {
		return
	}

	list, err := s.users.FindAllByRange(r.Context(), from, to)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) registerUser(w http.ResponseWriter, r *http.Request) {
	req := &services.UserRequest{}
	if !s.decodeAndValidate(w, r, req) {
		return
	}

	user, err := s.users.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.loggerFrom(r).Info(r.Context(), "Registered", "id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) getUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) replaceUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	req := &services.ReplaceUserRequest{}
	if !s.decodeAndValidate(w, r, req) {
		return
	}

	user, err := s.users.Replace(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) patchUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	req := &services.PatchUserRequest{}
	if !decode(w, r, req) {
		return
	}

	user, err := s.users.Patch(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	user, err := s.users.DeleteByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.loggerFrom(r).Info(r.Context(), "Deleted", "id", id)
	writeJSON(w, http.StatusOK, user)
}

// --- request helpers ---

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed JSON request: %v", err))
		return false
	}
	return true
}

func (s *HTTPServer) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decode(w, r, dst) {
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		if msgs, ok := fieldErrors(err); ok {
			writeValidationErrors(w, msgs)
			return false
		}
		s.writeServiceError(w, r, err)
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid id %q", raw))
		return 0, false
	}
	return id, true
}

func dateParam(w http.ResponseWriter, r *http.Request, name string) (timex.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Required request parameter '%s' is not present", name))
		return timex.Date{}, false
	}

	d, err := timex.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parameter '%s': %v", name, err))
		return timex.Date{}, false
	}
	return d, true
}
