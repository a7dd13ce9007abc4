package shared

import (
	"context"
	"localguide/shared/constant"
	"localguide/shared/dto"
	"localguide/shared/timezone"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

func ConvertStringToBool(value string) *bool {
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to bool")

		return nil
	}

	return &boolValue
}

func ConvertStringToFloat(value string) *float64 {
	if value == "" {
		return nil
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to float")

		return nil
	}

	return &floatValue
}

// TransformFields converts the non-zero, db-tagged fields of a struct into a column map
// stamped with modified_at and modified_by. Nil pointers are skipped; non-nil pointers are kept
// even when they point at a zero value.
func TransformFields(data interface{}, username string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins the parts with ':' the way redis keys are namespaced.
func BuildCacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

// ToMinorUnits converts a decimal amount to the smallest currency unit, rounding half away from zero.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * constant.MinorUnitFactor))
}

func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	return userID
}

func GetUserRole(ctx context.Context) string {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return role
}

func GetUserEmail(ctx context.Context) string {
	email, _ := ctx.Value(constant.ContextKeyUserEmail).(string)

	return email
}

// GetActor returns the identity recorded in audit columns, falling back to system for background work.
func GetActor(ctx context.Context) string {
	if email := GetUserEmail(ctx); email != "" {
		return email
	}

	return constant.ContextSystem
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRole(ctx) == constant.RoleAdmin
}

// WithIdentity stores the authenticated caller on the context.
func WithIdentity(ctx context.Context, userID, email, role string) context.Context {
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, email)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}
