package dashboard

import (
	"context"
	"net/http"

	"localguide/infras/otel"
	"localguide/internal/domains/dashboard/model/dto"
	"localguide/internal/domains/dashboard/service"
	"localguide/shared/constant"
	"localguide/transport/http/middleware"
	"localguide/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Dashboard
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Dashboard, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/dashboard", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Authenticate)

		routerGroup.Get("/", handler.GetDashboard)
		routerGroup.With(handler.middleware.Authorize(constant.RoleAdmin)).Get("/admin", handler.GetAdminDashboard)
		routerGroup.With(handler.middleware.Authorize(constant.RoleGuide)).Get("/guide", handler.GetGuideDashboard)
		routerGroup.With(handler.middleware.Authorize(constant.RoleTourist)).Get("/tourist", handler.GetTouristDashboard)
	})
}

// GetDashboard returns the dashboard matching the caller's role.
// @Summary Get my dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Data[any] "Role specific dashboard"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/dashboard [get]
// @Security BearerAuth
func (handler *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	render(handler, w, r, "GetDashboard", handler.service.Get)
}

// @Summary Get the admin dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Data[dto.AdminDashboard] "Platform statistics"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/dashboard/admin [get]
// @Security BearerAuth
func (handler *Handler) GetAdminDashboard(w http.ResponseWriter, r *http.Request) {
	render[dto.AdminDashboard](handler, w, r, "GetAdminDashboard", handler.service.Admin)
}

// @Summary Get the guide dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Data[dto.GuideDashboard] "Guide statistics"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/dashboard/guide [get]
// @Security BearerAuth
func (handler *Handler) GetGuideDashboard(w http.ResponseWriter, r *http.Request) {
	render[dto.GuideDashboard](handler, w, r, "GetGuideDashboard", handler.service.Guide)
}

// @Summary Get the tourist dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Data[dto.TouristDashboard] "Tourist statistics"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/dashboard/tourist [get]
// @Security BearerAuth
func (handler *Handler) GetTouristDashboard(w http.ResponseWriter, r *http.Request) {
	render[dto.TouristDashboard](handler, w, r, "GetTouristDashboard", handler.service.Tourist)
}

func render[T any](handler *Handler, w http.ResponseWriter, r *http.Request, name string, load func(ctx context.Context) (T, error)) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
	defer scope.End()

	res, err := load(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("dashboard", name).Msg("failed to load dashboard")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
