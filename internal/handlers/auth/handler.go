package auth

import (
	"net/http"
	"time"

	"localguide/config"
	"localguide/infras/otel"
	"localguide/internal/domains/auth/model/dto"
	"localguide/internal/domains/auth/service"
	"localguide/shared/constant"
	"localguide/shared/validator"
	"localguide/transport/http/middleware"
	"localguide/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Auth
	middleware middleware.AuthRole
	cfg        *config.Config
	otel       otel.Otel
}

func New(service service.Auth, middleware middleware.AuthRole, cfg *config.Config, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		cfg:        cfg,
		otel:       otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/logout", handler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(handler.middleware.Authenticate)
			r.Patch("/change-password", handler.ChangePassword)
			r.Get("/me", handler.Me)
		})
	})
}

// Register handles user registration
// @Summary Register a new user
// @Description Register a tourist or guide account and start a session.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Data[dto.AuthResponse] "Registration successful"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/register [post]
func (handler *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Register")
	defer scope.End()

	req := dto.RegisterRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Register(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to register user")

		response.WithError(w, err)

		return
	}

	handler.setSessionCookie(w, res.Token)

	scope.AddEvent("User registered successfully")

	response.WithJSONMessage(w, http.StatusCreated, "Registration successful", res)
}

// Login handles user login
// @Summary Login a user
// @Description Login with email and password. The token is returned and set as an HTTP-only cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Data[dto.AuthResponse] "Login successful"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/login [post]
func (handler *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Login")
	defer scope.End()

	req := dto.LoginRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Login(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to login user")

		response.WithError(w, err)

		return
	}

	handler.setSessionCookie(w, res.Token)

	scope.AddEvent("User logged in successfully")

	response.WithJSONMessage(w, http.StatusOK, "Login successful", res)
}

// Logout clears the session cookie
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Message "Logged out successfully"
// @Router /v1/auth/logout [post]
func (handler *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	_, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Logout")
	defer scope.End()

	http.SetCookie(w, &http.Cookie{
		Name:     handler.cfg.JWT.CookieName,
		Value:    constant.Empty,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})

	response.WithMessage(w, http.StatusOK, "Logged out successfully")
}

// ChangePassword replaces the caller's password
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Change Password Request"
// @Success 200 {object} response.Message "Password changed successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/change-password [patch]
// @Security BearerAuth
func (handler *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ChangePassword")
	defer scope.End()

	req := dto.ChangePasswordRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.ChangePassword(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to change password")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Password changed successfully")
}

// Me returns the caller with activity counts
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Data[dto.MeResponse] "User profile retrieved"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/me [get]
// @Security BearerAuth
func (handler *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Me")
	defer scope.End()

	res, err := handler.service.Me(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get current user")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	maxAge := handler.cfg.JWT.CookieExpireDays * constant.SecondsInDay

	http.SetCookie(w, &http.Cookie{
		Name:     handler.cfg.JWT.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !handler.cfg.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}
