package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"localguide/config"
	"localguide/infras/jwt"
	"localguide/infras/otel"
	userModel "localguide/internal/domains/user/model"
	userRepository "localguide/internal/domains/user/repository"
	"localguide/shared"
	"localguide/shared/constant"
	"localguide/shared/failure"
	"localguide/transport/http/response"

	"github.com/rs/zerolog/log"
)

const (
	messageLoginRequired = "Please log in to access this resource"
	messageForbiddenRole = "You do not have permission to perform this action"
	messageForbiddenItem = "You do not have permission to access this resource"
)

// OwnerResolver returns the id of the user owning the resource a request targets.
type OwnerResolver func(r *http.Request) (string, error)

// Auth resolves the caller from a bearer header or the session cookie.
type Auth interface {
	Authenticate(http.Handler) http.Handler
	OptionalAuth(http.Handler) http.Handler
}

// Role gates an authenticated caller by role or by ownership.
type Role interface {
	Authorize(roles ...string) func(http.Handler) http.Handler
	OwnerOrAdmin(resolve OwnerResolver) func(http.Handler) http.Handler
}

// AuthRole combines all middleware interfaces
type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	userRepo   userRepository.User
	otel       otel.Otel
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, userRepo userRepository.User, otel otel.Otel, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		userRepo:   userRepo,
		otel:       otel,
		cfg:        cfg,
	}
}

// Authenticate rejects the request unless it carries a valid token of an existing, active user.
func (m *authRoleImpl) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "auth.middleware")

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       request.URL.Path,
			"http.method":     request.Method,
		})

		user, err := m.resolve(ctx, request)
		if err != nil {
			scope.TraceError(err)
			scope.End()

			response.WithError(writer, err)

			return
		}

		scope.End()

		next.ServeHTTP(writer, request.WithContext(withUser(request.Context(), user)))
	})
}

// OptionalAuth attaches the caller when the token resolves and otherwise continues anonymously.
func (m *authRoleImpl) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "optional_auth.middleware")

		user, err := m.resolve(ctx, request)
		scope.End()

		if err != nil {
			next.ServeHTTP(writer, request)

			return
		}

		next.ServeHTTP(writer, request.WithContext(withUser(request.Context(), user)))
	})
}

// Authorize requires a prior Authenticate.
func (m *authRoleImpl) Authorize(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "rbac.middleware")

			if shared.GetUserID(ctx) == constant.Empty {
				err := failure.Unauthorized(messageLoginRequired)
				scope.TraceError(err)
				scope.End()
				response.WithError(writer, err)

				return
			}

			userRole := shared.GetUserRole(ctx)
			if !slices.Contains(roles, userRole) {
				err := failure.Forbidden(messageForbiddenRole)
				scope.TraceError(err)
				scope.SetAttributes(map[string]any{
					"user_role":     userRole,
					"allowed_roles": roles,
					"reason":        "role_not_allowed",
				})
				scope.End()
				response.WithError(writer, err)

				return
			}

			scope.End()
			next.ServeHTTP(writer, request)
		})
	}
}

// OwnerOrAdmin lets admins through and otherwise compares the resolved owner with the caller.
func (m *authRoleImpl) OwnerOrAdmin(resolve OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "owner.middleware")

			userID := shared.GetUserID(ctx)
			if userID == constant.Empty {
				err := failure.Unauthorized(messageLoginRequired)
				scope.TraceError(err)
				scope.End()
				response.WithError(writer, err)

				return
			}

			if shared.IsAdmin(ctx) {
				scope.End()
				next.ServeHTTP(writer, request)

				return
			}

			ownerID, err := resolve(request)
			if err == nil && ownerID != userID {
				err = failure.Forbidden(messageForbiddenItem)
			}

			if err != nil {
				scope.TraceError(err)
				scope.End()
				response.WithError(writer, err)

				return
			}

			scope.End()
			next.ServeHTTP(writer, request)
		})
	}
}

func (m *authRoleImpl) resolve(ctx context.Context, request *http.Request) (userModel.User, error) {
	tokenString, err := jwt.ExtractToken(request, m.cfg.JWT.CookieName)
	if err != nil {
		return userModel.User{}, failure.Unauthorized(messageLoginRequired)
	}

	claims, err := m.jwtService.Validate(tokenString)
	if err != nil {
		message := "Invalid token"
		if errors.Is(err, jwt.ErrExpiredToken) {
			message = "Token has expired"
		}

		return userModel.User{}, failure.Unauthorized(message)
	}

	user, err := m.userRepo.Get(ctx, shared.FilterByID(claims.UserID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to load authenticated user")

		return userModel.User{}, err // nolint:wrapcheck
	}

	if user.ID == constant.Empty {
		return user, failure.Unauthorized("User no longer exists")
	}

	if !user.IsActive {
		return user, failure.Unauthorized("Your account has been deactivated")
	}

	user.Password = constant.Empty

	return user, nil
}

func withUser(ctx context.Context, user userModel.User) context.Context {
	ctx = shared.WithIdentity(ctx, user.ID, user.Email, user.Role)

	return context.WithValue(ctx, constant.ContextKeyUser, user)
}

// UserFromContext returns the authenticated user without its password hash.
func UserFromContext(ctx context.Context) (userModel.User, bool) {
	user, ok := ctx.Value(constant.ContextKeyUser).(userModel.User)

	return user, ok
}
