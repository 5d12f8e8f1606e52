package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
	"github.com/dmitrijs2005/userkeeper/internal/timex"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	usersPath   = "/users"
	usersNumber = 9
	wrongID     = 30
)

var today = time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	handler http.Handler
	manager *repomanager.MemDBRepositoryManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	m, err := repomanager.NewMemDBRepositoryManager()
	require.NoError(t, err)

	for i := 1; i <= usersNumber; i++ {
		require.NoError(t, m.Users().Put(context.Background(), uint64(i), &models.User{
			Email:     fmt.Sprintf("User%d@gmail.com", i),
			FirstName: fmt.Sprintf("UserFirstName%d", i),
			LastName:  fmt.Sprintf("UserLastName%d", i),
			BirthDate: timex.NewDate(1900+i*10, time.April, i),
		}))
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()

	us := services.NewUserService(m, cfg, services.WithClock(func() time.Time { return today }))
	s, err := NewHTTPServer(cfg, logging.Nop{}, us)
	require.NoError(t, err)

	return &testEnv{handler: s.Router(), manager: m}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) *services.UserResponse {
	t.Helper()
	u := &services.UserResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), u))
	return u
}

func decodeUsers(t *testing.T, rec *httptest.ResponseRecorder) []uint64 {
	t.Helper()
	var list []services.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	ids := make([]uint64, 0, len(list))
	for _, u := range list {
		ids = append(ids, u.ID)
	}
	return ids
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetAllUsers(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, usersPath, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9}, decodeUsers(t, rec))
}

func TestGetAllUsersByRange(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, usersPath+"/range?from=1950-01-01&to=1980-01-01", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{5, 6, 7}, decodeUsers(t, rec))
}

func TestGetAllUsersByRange_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{"from after to", "?from=1980-01-01&to=1950-01-01", "Argument 'from' must be greater than 'to'"},
		{"missing from", "?to=1950-01-01", "Required request parameter 'from' is not present"},
		{"missing to", "?from=1950-01-01", "Required request parameter 'to' is not present"},
		{"bad date", "?from=01.01.1950&to=1980-01-01", `parameter 'from': invalid date "01.01.1950", expected 2006-01-02`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodGet, usersPath+"/range"+tt.query, "")

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, ErrorBody{Status: "BAD_REQUEST", Error: tt.wantMsg}, decodeError(t, rec))
		})
	}
}

func TestRegisterUser_Created(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, usersPath,
		`{"email":"User12@gmail.com","firstName":"firstName12","lastName":"lastName12","birthDate":"1989-04-17","phoneNumber":"+371"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	want := &services.UserResponse{
		ID:          10,
		Email:       "User12@gmail.com",
		FirstName:   "firstName12",
		LastName:    "lastName12",
		BirthDate:   timex.NewDate(1989, time.April, 17),
		PhoneNumber: "+371",
	}
	assert.Empty(t, cmp.Diff(want, decodeUser(t, rec)))
}

func TestRegisterUser_TooYoung(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, usersPath,
		`{"email":"kid@gmail.com","firstName":"Kid","lastName":"Young","birthDate":"2010-01-01"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrorBody{
		Status: "BAD_REQUEST",
		Error:  "User can't be registered, cause he is younger than 18",
	}, decodeError(t, rec))

	n, err := env.manager.Users().Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, usersNumber, n)
}

func TestRegisterUser_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, usersPath, `{"email":"not-an-email","firstName":"  ","lastName":""}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ValidationErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BAD_REQUEST", body.Status)
	assert.ElementsMatch(t, []string{
		"email must be a well-formed email address",
		"firstName can't be blank",
		"lastName can't be blank",
		"birthDate must not be null",
	}, body.Errors)
}

func TestRegisterUser_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, usersPath, `{"email":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(decodeError(t, rec).Error, "malformed JSON request"))
}

func TestGetUserByID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, usersPath+"/4", "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeUser(t, rec)
	assert.Equal(t, uint64(4), got.ID)
	assert.Equal(t, "1940-04-04", got.BirthDate.String())
}

func TestGetUserByID_BadID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, usersPath+"/abc", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `invalid id "abc"`, decodeError(t, rec).Error)
}

func TestNotFoundForEveryIDOperation(t *testing.T) {
	replaceBody := `{"email":"User90@gmail.com","firstName":"firstName","lastName":"lastName","birthDate":"1999-04-04"}`

	tests := []struct {
		method string
		body   string
	}{
		{http.MethodGet, ""},
		{http.MethodPut, replaceBody},
		{http.MethodPatch, `{"firstName":"a"}`},
		{http.MethodDelete, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, tt.method, fmt.Sprintf("%s/%d", usersPath, wrongID), tt.body)

			require.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, ErrorBody{Status: "NOT_FOUND", Error: "Can't find user by id = 30"}, decodeError(t, rec))
		})
	}
}

func TestReplaceUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, usersPath+"/3",
		`{"email":"User12@gmail.com","firstName":"firstName12","lastName":"lastName12","birthDate":"1989-04-17","address":"ignored"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	want := &services.UserResponse{
		ID:        3,
		Email:     "User12@gmail.com",
		FirstName: "firstName12",
		LastName:  "lastName12",
		BirthDate: timex.NewDate(1989, time.April, 17),
	}
	assert.Empty(t, cmp.Diff(want, decodeUser(t, rec)))
}

func TestReplaceUser_ViewKeepsEmptyContactFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, usersPath+"/3",
		`{"email":"User12@gmail.com","firstName":"firstName12","lastName":"lastName12","birthDate":"1989-04-17"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "address")
	assert.Contains(t, raw, "phoneNumber")
	assert.Equal(t, "", raw["address"])
	assert.Equal(t, "", raw["phoneNumber"])
}

func TestReplaceUser_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, usersPath+"/3", `{"firstName":"","lastName":"x","birthDate":"1989-04-17"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ValidationErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"firstName can't be blank"}, body.Errors)
}

func TestPatchUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPatch, usersPath+"/5", `{"firstName":"Jane","lastName":"Doe"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeUser(t, rec)
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, "Doe", got.LastName)
	assert.Equal(t, "User5@gmail.com", got.Email)
	assert.Equal(t, "1950-04-05", got.BirthDate.String())
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, usersPath+"/6", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(6), decodeUser(t, rec).ID)

	rec = env.do(t, http.MethodGet, usersPath, "")
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 7, 8, 9}, decodeUsers(t, rec))

	rec = env.do(t, http.MethodGet, usersPath+"/6", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, usersPath, nil)
	req.Header.Set(common.RequestIDHeaderName, "req-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(common.RequestIDHeaderName))

	rec = env.do(t, http.MethodGet, usersPath, "")
	assert.Len(t, rec.Header().Get(common.RequestIDHeaderName), 36, "generated ids are UUIDs")
}

func TestUnknownRouteAndMethod(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/accounts", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Status)

	rec = env.do(t, http.MethodPost, usersPath+"/1", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, rec).Status)
}

func TestUnknownRouteAndMethod_PassThroughMiddleware(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{}
	cfg.LoadDefaults()
	s, err := NewHTTPServer(cfg, logging.NewJSONLogger(&buf, "info"), brokenUsers{})
	require.NoError(t, err)
	handler := s.Router()

	tests := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/accounts", http.StatusNotFound},
		{http.MethodPost, usersPath + "/1", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			buf.Reset()
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			require.Equal(t, tt.code, rec.Code)
			assert.Len(t, rec.Header().Get(common.RequestIDHeaderName), 36)
			assert.Contains(t, buf.String(), `"msg":"HTTP request"`)
			assert.Contains(t, buf.String(), fmt.Sprintf(`"status":%d`, tt.code))
		})
	}
}

// --- internal errors ---

type brokenUsers struct {
	UserService
}

func (brokenUsers) FindAll(context.Context) ([]*services.UserResponse, error) {
	return nil, errors.New("db down")
}

func TestInternalErrorsAreHidden(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	s, err := NewHTTPServer(cfg, logging.Nop{}, brokenUsers{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, usersPath, nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrorBody{Status: "INTERNAL_SERVER_ERROR", Error: "internal error"}, decodeError(t, rec))
}

func TestNewHTTPServer_NilLoggerFallsBackToNop(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	s, err := NewHTTPServer(cfg, nil, brokenUsers{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, usersPath, nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
