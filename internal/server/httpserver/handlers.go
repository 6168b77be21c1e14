package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/dmitrijs2005/userauth/internal/server/models"
	"github.com/dmitrijs2005/userauth/internal/server/services"
)

const maxBodyBytes = 1 << 20

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type identityResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      identityResponse `json:"user"`
}

type meResponse struct {
	identityResponse
	ExpiresAt time.Time `json:"exp"`
}

type userListResponse struct {
	Users   []userResponse `json:"users"`
	HasNext bool           `json:"has_next"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Active: u.Active, CreatedAt: u.CreatedAt}
}

func toIdentity(c *auth.Claims) identityResponse {
	return identityResponse{ID: c.UserID, Email: c.Email, Name: c.Name}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *HTTPServer) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := s.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.logFailure(r, "register", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sess, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.logFailure(r, "login", err)
		writeError(w, err)
		return
	}
	s.writeSession(w, sess)
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{identityResponse: toIdentity(claims), ExpiresAt: claims.ExpiresAt.Time})
}

func (s *HTTPServer) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	token, _ := tokenFromRequest(r, s.cookieName)

	sess, err := s.users.ResetPassword(r.Context(), token, req.Email, req.Password)
	if err != nil {
		s.logFailure(r, "reset password", err)
		writeError(w, err)
		return
	}
	s.writeSession(w, sess)
}

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.UserFilter{Email: q.Get("email"), Name: q.Get("name")}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, err)
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, err)
		return
	}

	page, err := s.users.ListUsers(r.Context(), filter)
	if err != nil {
		s.logFailure(r, "list users", err)
		writeError(w, err)
		return
	}

	resp := userListResponse{Users: make([]userResponse, 0, len(page.Users)), HasNext: page.HasNext}
	for _, u := range page.Users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: id must be an integer", common.ErrValidation))
		return
	}

	u, err := s.users.GetUser(r.Context(), id)
	if err != nil {
		s.logFailure(r, "get user", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *HTTPServer) writeSession(w http.ResponseWriter, sess *services.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, sessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      toIdentity(sess.Claims),
	})
}

// logFailure logs unexpected errors at error level and expected rejections
// at debug level.
func (s *HTTPServer) logFailure(r *http.Request, op string, err error) {
	if status, _ := statusFor(err); status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), op+" failed", "error", err)
		return
	}
	s.logger.Debug(r.Context(), op+" rejected", "error", err)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", common.ErrValidation, v)
	}
	return n, nil
}
