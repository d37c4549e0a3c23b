package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/auth"
	"github.com/sakif/codigoteca/internal/service"
)

const (
	stateCookie    = "oauth_state"
	stateMaxAge    = 600
	loginLandingTo = "/"
	deniedTo       = "/?auth=denied"
)

// AuthHandler serves /auth: GitHub sign-in and logout. Password login lives
// on UserHandler because it answers with JSON instead of a cookie.
type AuthHandler struct {
	github       *auth.GitHubProvider
	auth         *service.AuthService
	tokens       *auth.TokenService
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil when GitHub login
// is not configured; the server then does not mount the /auth/github routes.
func NewAuthHandler(
	github *auth.GitHubProvider,
	authService *service.AuthService,
	tokens *auth.TokenService,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github:       github,
		auth:         authService,
		tokens:       tokens,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// setCookie writes an HttpOnly, SameSite=Lax cookie on path "/". A negative
// maxAge deletes it.
func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleGitHubLogin stores a fresh state in a cookie and sends the browser to
// GitHub with the same state.
//
// HTTP: GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := auth.NewState()
	h.setCookie(w, stateCookie, state, stateMaxAge)
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback finishes the GitHub sign-in.
//
// HTTP: GET /auth/github/callback?code=...&state=...
//
// The state must equal the cookie set by HandleGitHubLogin and is consumed
// either way. On success the account is found or created by email and its
// token is stored in the auth.TokenCookie cookie.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || query.Get("state") != cookie.Value {
		h.logger.Warn("github callback rejected: state mismatch", slog.Bool("cookie", err == nil))
		writeError(w, r, h.logger, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}
	h.setCookie(w, stateCookie, "", -1)

	if reason := query.Get("error"); reason != "" {
		h.logger.Info("github sign-in denied", slog.String("reason", reason))
		http.Redirect(w, r, deniedTo, http.StatusSeeOther)
		return
	}

	code := query.Get("code")
	if code == "" {
		writeError(w, r, h.logger, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	profile, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github code exchange failed", slog.String("error", err.Error()))
		writeError(w, r, h.logger, apperror.Unauthorized("GitHub authentication failed"))
		return
	}

	result, err := h.auth.LoginWithGitHub(r.Context(), profile)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setCookie(w, auth.TokenCookie, result.Token, int(h.tokens.TTL().Seconds()))
	http.Redirect(w, r, loginLandingTo, http.StatusSeeOther)
}

// HandleLogout deletes the token cookie. Tokens are stateless, so a copied
// token keeps working until it expires.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, auth.TokenCookie, "", -1)
	writeSuccess(w, http.StatusOK, "Logged out", "", nil)
}
