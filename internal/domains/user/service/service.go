package service

import (
	"context"
	"fmt"
	"localguide/config"
	"localguide/infras/otel"
	"localguide/internal/domains/user/model"
	"localguide/internal/domains/user/model/dto"
	"localguide/internal/domains/user/repository"
	"localguide/shared"
	"localguide/shared/cache"
	"localguide/shared/constant"
	"localguide/shared/failure"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetProfile = "user:profile"
)

type User interface {
	GetGuides(ctx context.Context, query dto.ListGuidesQuery) (dto.GetGuidesResponse, error)
	GetUsers(ctx context.Context, query dto.ListUsersQuery) (dto.GetUsersResponse, error)
	GetProfile(ctx context.Context, id string) (dto.UserResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateUserRequest) (dto.UserResponse, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateUserStatusRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo        repository.User
	profileRepo repository.Profile
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(repo repository.User, profileRepo repository.Profile, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) User {
	return &serviceImpl{
		repo:        repo,
		profileRepo: profileRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

func (s *serviceImpl) GetGuides(ctx context.Context, query dto.ListGuidesQuery) (res dto.GetGuidesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetGuides")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := query.Filter()

	total, err := s.profileRepo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count guides")

		return res, fmt.Errorf("failed to count guides: %w", err)
	}

	guides, err := s.profileRepo.GetAll(ctx, query.QueryParams, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get guides")

		return res, fmt.Errorf("failed to get guides: %w", err)
	}

	res.FromProfiles(guides, total, query.QueryParams)

	return res, nil
}

func (s *serviceImpl) GetUsers(ctx context.Context, query dto.ListUsersQuery) (res dto.GetUsersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetUsers")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := query.Filter()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count users")

		return res, fmt.Errorf("failed to count users: %w", err)
	}

	users, err := s.repo.GetAll(ctx, query.QueryParams, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get users")

		return res, fmt.Errorf("failed to get users: %w", err)
	}

	res.FromModels(users, total, query.QueryParams)

	return res, nil
}

func (s *serviceImpl) GetProfile(ctx context.Context, id string) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetProfile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetProfile, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for user profile")

		return res, nil
	}

	profile, err := s.profileRepo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user profile")

		return res, fmt.Errorf("failed to get user profile: %w", err)
	}

	if profile.ID == constant.Empty {
		return res, failure.NotFound("User not found")
	}

	res.FromProfile(profile)

	if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, time.Duration(s.cfg.Cache.TTL)*time.Second); err != nil {
		log.Error().Err(err).Msg("failed to save user profile to cache")
	}

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateUserRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.get(ctx, id)
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	if id != shared.GetUserID(ctx) && !shared.IsAdmin(ctx) {
		return res, failure.Forbidden("You can only update your own profile")
	}

	command := req.ToCommand(user.Role)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if err = s.repo.Update(ctx, command.Fields(shared.GetActor(ctx)), filter); err != nil {
		log.Error().Err(err).Str("role", command.Role()).Msg("failed to update user")

		return res, fmt.Errorf("failed to update user: %w", err)
	}

	return s.reload(ctx, id)
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, id string, req dto.UpdateUserStatusRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.get(ctx, id)
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	if user.Role == constant.RoleAdmin {
		return res, failure.Forbidden("Cannot deactivate admin accounts")
	}

	fields := shared.TransformFields(struct {
		IsActive *bool `db:"is_active"`
	}{req.IsActive}, shared.GetActor(ctx))

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update user status")

		return res, fmt.Errorf("failed to update user status: %w", err)
	}

	return s.reload(ctx, id)
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.get(ctx, id)
	if err != nil {
		return err // nolint:wrapcheck
	}

	if user.Role == constant.RoleAdmin {
		return failure.Forbidden("Cannot delete admin accounts")
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete user")

		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.evict(ctx, id)

	return nil
}

func (s *serviceImpl) get(ctx context.Context, id string) (model.User, error) {
	user, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return user, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return user, failure.NotFound("User not found")
	}

	return user, nil
}

func (s *serviceImpl) reload(ctx context.Context, id string) (res dto.UserResponse, err error) {
	s.evict(ctx, id)

	user, err := s.get(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(user)

	return res, nil
}

// evict drops the cached public profile. A cache failure only costs staleness until the TTL.
func (s *serviceImpl) evict(ctx context.Context, id string) {
	if err := s.cache.Delete(context.WithoutCancel(ctx), shared.BuildCacheKey(cacheGetProfile, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete user profile from cache")
	}
}
