package dto

import (
	userModel "localguide/internal/domains/user/model"
	userDto "localguide/internal/domains/user/model/dto"
	"localguide/shared/constant"
	gModel "localguide/shared/model"
	"localguide/shared/timezone"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type RegisterRequest struct {
	Email     string   `json:"email"     validate:"required,email"`
	Password  string   `json:"password"  validate:"required,min=6,max=72"`
	Name      string   `json:"name"      validate:"required,min=2,max=100"`
	Role      string   `json:"role"      validate:"omitempty,oneof=TOURIST GUIDE"`
	Phone     string   `json:"phone"     validate:"omitempty,max=30"`
	Languages []string `json:"languages" validate:"omitempty,dive,required"`
}

// NormalizedEmail is the lookup key; emails are stored lower-case.
func (r *RegisterRequest) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *RegisterRequest) ToUserModel(hashedPassword string) userModel.User {
	role := r.Role
	if role == "" {
		role = constant.RoleTourist
	}

	languages := r.Languages
	if languages == nil {
		languages = []string{}
	}

	email := r.NormalizedEmail()

	return userModel.User{
		ID:                uuid.NewString(),
		Email:             email,
		Password:          hashedPassword,
		Name:              strings.TrimSpace(r.Name),
		Role:              role,
		Phone:             r.Phone,
		Languages:         languages,
		Expertise:         pq.StringArray{},
		TravelPreferences: pq.StringArray{},
		IsActive:          true,
		Metadata:          gModel.NewMetadata(timezone.Now(), email),
	}
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(r.Email))
}

type AuthResponse struct {
	User  userDto.UserResponse `json:"user"`
	Token string               `json:"token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=72"`
}

type UpdatePasswordRequest struct {
	Password string `db:"password" json:"password" validate:"required"`
}

type Counts struct {
	Listings          int `json:"listings"`
	BookingsAsTourist int `json:"bookings_as_tourist"`
	BookingsAsGuide   int `json:"bookings_as_guide"`
	ReviewsReceived   int `json:"reviews_received"`
}

type MeResponse struct {
	userDto.UserResponse
	Counts Counts `json:"counts"`
}
