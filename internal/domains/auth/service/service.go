package service

import (
	"context"
	"fmt"
	"localguide/config"
	"localguide/infras/jwt"
	"localguide/infras/otel"
	"localguide/internal/domains/auth/model/dto"
	bookingModel "localguide/internal/domains/booking/model"
	bookingRepo "localguide/internal/domains/booking/repository"
	listingModel "localguide/internal/domains/listing/model"
	listingRepo "localguide/internal/domains/listing/repository"
	reviewModel "localguide/internal/domains/review/model"
	reviewRepo "localguide/internal/domains/review/repository"
	userModel "localguide/internal/domains/user/model"
	userRepo "localguide/internal/domains/user/repository"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"localguide/shared/failure"
	"localguide/shared/password"
	"net/http"

	"github.com/rs/zerolog/log"
)

// invalidCredentials is shared by every login failure so callers cannot probe for accounts.
const invalidCredentials = "Invalid email or password"

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
	Me(ctx context.Context) (dto.MeResponse, error)
}

type serviceImpl struct {
	userRepo    userRepo.User
	listingRepo listingRepo.Listing
	bookingRepo bookingRepo.Booking
	reviewRepo  reviewRepo.Review
	cfg         *config.Config
	otel        otel.Otel
	jwtService  jwt.JWT
}

func New(
	userRepo userRepo.User,
	listingRepo listingRepo.Listing,
	bookingRepo bookingRepo.Booking,
	reviewRepo reviewRepo.Review,
	cfg *config.Config,
	otel otel.Otel,
	jwt jwt.JWT,
) Auth {
	return &serviceImpl{
		userRepo:    userRepo,
		listingRepo: listingRepo,
		bookingRepo: bookingRepo,
		reviewRepo:  reviewRepo,
		cfg:         cfg,
		otel:        otel,
		jwtService:  jwt,
	}
}

func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (res dto.AuthResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	exists, err := s.userRepo.Exist(ctx, emailFilter(req.NormalizedEmail()))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return res, fmt.Errorf("failed to check if user exists: %w", err)
	}

	if exists {
		return res, failure.Conflict("User with this email already exists")
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return res, fmt.Errorf("failed to hash password: %w", err)
	}

	user := req.ToUserModel(hashedPassword)

	if err = s.userRepo.Insert(ctx, user); err != nil {
		// lost a race with a concurrent registration of the same email
		if failure.IsCode(err, http.StatusConflict) {
			return res, failure.Conflict("User with this email already exists")
		}

		log.Error().Err(err).Msg("failed to create user")

		return res, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(user)
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.AuthResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	email := req.NormalizedEmail()

	user, err := s.userRepo.Get(ctx, emailFilter(email))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		log.Warn().Str("email", email).Msg("login attempt with non-existent email")

		return res, failure.Unauthorized(invalidCredentials)
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("login attempt on deactivated account")

		return res, failure.Unauthorized(invalidCredentials)
	}

	if err = password.Verify(req.Password, user.Password); err != nil {
		log.Warn().Str("email", email).Msg("login attempt with wrong password")

		return res, failure.Unauthorized(invalidCredentials)
	}

	return s.issue(user)
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(shared.GetUserID(ctx), userModel.FieldID, userModel.TableName)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return failure.NotFound("User not found")
	}

	if err = password.Verify(req.CurrentPassword, user.Password); err != nil {
		return failure.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return fmt.Errorf("failed to hash new password: %w", err)
	}

	updatePassword := dto.UpdatePasswordRequest{Password: hashedPassword}

	if err = s.userRepo.Update(ctx, shared.TransformFields(updatePassword, shared.GetActor(ctx)), filter); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *serviceImpl) Me(ctx context.Context) (res dto.MeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Me")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	userID := shared.GetUserID(ctx)

	user, err := s.userRepo.Get(ctx, shared.FilterByID(userID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound("User not found")
	}

	if res.Counts.Listings, err = s.listingRepo.Count(ctx, byOwner(listingModel.FieldGuideID, listingModel.TableName, userID)); err != nil {
		log.Error().Err(err).Msg("failed to count listings")

		return res, fmt.Errorf("failed to count listings: %w", err)
	}

	if res.Counts.BookingsAsTourist, err = s.bookingRepo.Count(ctx, byOwner(bookingModel.FieldTouristID, bookingModel.TableName, userID)); err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	if res.Counts.BookingsAsGuide, err = s.bookingRepo.Count(ctx, byOwner(bookingModel.FieldGuideID, bookingModel.TableName, userID)); err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	if res.Counts.ReviewsReceived, err = s.reviewRepo.Count(ctx, byOwner(reviewModel.FieldGuideID, reviewModel.TableName, userID)); err != nil {
		log.Error().Err(err).Msg("failed to count reviews")

		return res, fmt.Errorf("failed to count reviews: %w", err)
	}

	res.UserResponse.FromModel(user)

	return res, nil
}

func (s *serviceImpl) issue(user userModel.User) (res dto.AuthResponse, err error) {
	token, err := s.jwtService.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate token")

		return res, fmt.Errorf("failed to generate token: %w", err)
	}

	res.User.FromModel(user)
	res.Token = token

	return res, nil
}

func emailFilter(email string) gDto.FilterGroup {
	return gDto.NewFilterGroup(
		gDto.Filter{Field: userModel.FieldEmail, Table: userModel.TableName, Operator: gDto.FilterOperatorEq, Value: email},
	)
}

func byOwner(field, table, userID string) gDto.FilterGroup {
	return gDto.NewFilterGroup(
		gDto.Filter{Field: field, Table: table, Operator: gDto.FilterOperatorEq, Value: userID},
	)
}
