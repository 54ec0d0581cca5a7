package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/dugoutlabs/ballclub/internal/domain/player"
	"github.com/dugoutlabs/ballclub/internal/domain/team"
	"github.com/dugoutlabs/ballclub/internal/domain/user"
	"github.com/dugoutlabs/ballclub/internal/platform/session"
	"github.com/dugoutlabs/ballclub/internal/usecase"
)

type Handler struct {
	authService    *usecase.AuthService
	teamService    *usecase.TeamService
	rosterService  *usecase.RosterService
	refreshService *usecase.RefreshService
	logger         *slog.Logger
	validator      *validator.Validate
	cookieSecure   bool
}

func NewHandler(
	authService *usecase.AuthService,
	teamService *usecase.TeamService,
	rosterService *usecase.RosterService,
	refreshService *usecase.RefreshService,
	logger *slog.Logger,
	cookieSecure bool,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		authService:    authService,
		teamService:    teamService,
		rosterService:  rosterService,
		refreshService: refreshService,
		logger:         logger,
		validator:      validator.New(),
		cookieSecure:   cookieSecure,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SignUp")
	defer span.End()

	var req credentialsRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	account, err := h.authService.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "sign-up failed", "email", req.Email, "error", err)
		writeError(ctx, w, err)
		return
	}

	// Registration does not establish a session; the caller signs in next.
	writeSuccess(ctx, w, http.StatusCreated, signUpDTO{
		User:    userToDTO(account),
		Message: "Check your email to confirm your account!",
	})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SignIn")
	defer span.End()

	var req credentialsRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	sess, err := h.authService.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "sign-in failed", "email", req.Email, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.setSessionCookie(w, sess.AccessToken)
	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(sess))
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SignOut")
	defer span.End()

	token := session.AccessToken(ctx)
	if err := h.authService.SignOut(ctx, token); err != nil {
		h.logger.WarnContext(ctx, "sign-out failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.clearSessionCookie(w)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSession")
	defer span.End()

	sess, ok := session.FromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: session is missing from request context", usecase.ErrUnauthorized))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(sess))
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDashboard")
	defer span.End()

	sess, ok := session.FromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: session is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teams, err := h.teamService.ListTeams(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "dashboard team listing failed", "user_id", sess.User.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dashboardDTO{
		User:      userToDTO(sess.User),
		TeamCount: len(teams),
		Teams:     teamsToDTO(teams),
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=50"`
}

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type signUpDTO struct {
	User    userDTO `json:"user"`
	Message string  `json:"message"`
}

type sessionDTO struct {
	AccessToken string  `json:"accessToken"`
	User        userDTO `json:"user"`
}

type dashboardDTO struct {
	User      userDTO   `json:"user"`
	TeamCount int       `json:"teamCount"`
	Teams     []teamDTO `json:"teams"`
}

type teamDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
}

type playerDTO struct {
	ID        string `json:"id"`
	TeamID    string `json:"teamId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type teamRosterDTO struct {
	Team    teamDTO     `json:"team"`
	Players []playerDTO `json:"players"`
}

func userToDTO(v user.User) userDTO {
	return userDTO{ID: v.ID, Email: v.Email}
}

func sessionToDTO(v user.Session) sessionDTO {
	return sessionDTO{
		AccessToken: v.AccessToken,
		User:        userToDTO(v.User),
	}
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:        v.ID,
		Name:      v.Name,
		UserID:    v.UserID,
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func teamsToDTO(items []team.Team) []teamDTO {
	out := make([]teamDTO, 0, len(items))
	for _, t := range items {
		out = append(out, teamToDTO(t))
	}
	return out
}

func playerToDTO(v player.Player) playerDTO {
	return playerDTO{
		ID:        v.ID,
		TeamID:    v.TeamID,
		FirstName: strings.TrimSpace(v.FirstName),
		LastName:  strings.TrimSpace(v.LastName),
		Email:     v.Email,
	}
}

func playersToDTO(items []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, p := range items {
		out = append(out, playerToDTO(p))
	}
	return out
}
