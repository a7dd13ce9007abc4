package user

import (
	"net/http"

	"localguide/infras/otel"
	"localguide/internal/domains/user/model/dto"
	"localguide/internal/domains/user/service"
	"localguide/shared/constant"
	"localguide/shared/validator"
	"localguide/transport/http/middleware"
	"localguide/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.User
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.User, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/users", func(routerGroup chi.Router) {
		routerGroup.Get("/guides", handler.GetGuides)
		routerGroup.Get("/{id}", handler.GetUserByID)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(handler.middleware.Authenticate)

			protected.With(handler.middleware.OwnerOrAdmin(pathOwner)).Patch("/{id}", handler.UpdateUser)

			protected.With(handler.middleware.Authorize(constant.RoleAdmin)).Get("/", handler.GetUsers)
			protected.With(handler.middleware.Authorize(constant.RoleAdmin)).Patch("/{id}/status", handler.UpdateUserStatus)
			protected.With(handler.middleware.Authorize(constant.RoleAdmin)).Delete("/{id}", handler.DeleteUser)
		})
	})
}

// pathOwner treats the user in the path as the owner of the profile.
func pathOwner(r *http.Request) (string, error) {
	return chi.URLParam(r, constant.RequestParamID), nil
}

// GetGuides searches active guides.
// @Summary Search guides
// @Description Public guide search with location, language, expertise and daily rate filters.
// @Tags User
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param city query string false "City contains"
// @Param country query string false "Country contains"
// @Param language query string false "Spoken language"
// @Param expertise query string false "Expertise tag"
// @Param min_rate query number false "Minimum daily rate"
// @Param max_rate query number false "Maximum daily rate"
// @Param search query string false "Name or bio contains"
// @Success 200 {object} response.Data[dto.GetGuidesResponse] "List of guides"
// @Failure 500 {object} response.Error
// @Router /v1/users/guides [get]
func (handler *Handler) GetGuides(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetGuides")
	defer scope.End()

	query := dto.ListGuidesQuery{}
	query.FromRequest(r)

	res, err := handler.service.GetGuides(ctx, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get guides")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetUsers lists every account.
// @Summary Get all users
// @Tags User
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param role query string false "TOURIST, GUIDE or ADMIN"
// @Param is_active query bool false "Active flag"
// @Param city query string false "City contains"
// @Param search query string false "Name or email contains"
// @Success 200 {object} response.Data[dto.GetUsersResponse] "List of users"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users [get]
// @Security BearerAuth
func (handler *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUsers")
	defer scope.End()

	query := dto.ListUsersQuery{}
	query.FromRequest(r)

	res, err := handler.service.GetUsers(ctx, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get users")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Users retrieved successfully")

	response.WithJSON(w, http.StatusOK, res)
}

// GetUserByID retrieves a public profile.
// @Summary Get a user by ID
// @Tags User
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Data[dto.UserResponse] "User details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users/{id} [get]
func (handler *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUserByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	user, err := handler.service.GetProfile(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get user by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, user)
}

// UpdateUser updates a profile. Which fields apply depends on the caller's role.
// @Summary Update a user by ID
// @Tags User
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateUserRequest true "Update User Request"
// @Success 200 {object} response.Data[dto.UserResponse] "Profile updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateUser")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateUserRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Update(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update user")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("User updated successfully")

	response.WithJSONMessage(w, http.StatusOK, "Profile updated successfully", res)
}

// UpdateUserStatus activates or deactivates an account.
// @Summary Change user status
// @Tags User
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateUserStatusRequest true "Status Request"
// @Success 200 {object} response.Data[dto.UserResponse] "User status updated"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateUserStatus")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateUserStatusRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.UpdateStatus(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update user status")

		response.WithError(w, err)

		return
	}

	response.WithJSONMessage(w, http.StatusOK, "User status updated", res)
}

// DeleteUser removes an account.
// @Summary Delete a user by ID
// @Tags User
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Message "User deleted successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteUser")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete user")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("User deleted successfully")

	response.WithMessage(w, http.StatusOK, "User deleted successfully")
}
