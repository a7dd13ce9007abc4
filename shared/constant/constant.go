package constant

import (
	"time"
)

const (
	ContextGuest  = "guest"
	ContextSystem = "system"
)

// Context key types to avoid collisions
type contextKey string

const (
	ContextKeyUserID    contextKey = "user_id"
	ContextKeyUserEmail contextKey = "user_email"
	ContextKeyUserRole  contextKey = "user_role"
	ContextKeyUser      contextKey = "user"
)

const (
	RoleTourist = "TOURIST"
	RoleGuide   = "GUIDE"
	RoleAdmin   = "ADMIN"
)

const (
	RequestParamPage      = "page"
	RequestParamLimit     = "limit"
	RequestParamSortBy    = "sort_by"
	RequestParamSortDir   = "sort_dir"
	RequestParamSortOrder = "sort_order"
)

const (
	RequestParamID   = "id"
	RequestMaxMemory = 10 << 20 // 10 MB
	WebhookMaxBytes  = 65536
)

const (
	DefaultValuePage    = 1
	DefaultValueLimit   = 10
	MaxValueLimit       = 100
	DefaultValueSortBy  = "created_at"
	DefaultValueSortDir = "DESC"
)

const (
	FieldCreatedAt  = "created_at"
	FieldCreatedBy  = "created_by"
	FieldModifiedAt = "modified_at"
	FieldModifiedBy = "modified_by"
)

const (
	PqErrorCodeUniqueViolation = "23505"
	PqErrorCodeFkViolation     = "23503"
	PqErrorCodeInvalidText     = "22P02"
)

const (
	DateFormat     = time.RFC3339
	DateOnlyFormat = "2006-01-02"
	ClockFormat    = "15:04"
)

const (
	MinutesToSeconds = 60
	SecondsInDay     = 24 * 60 * 60
	MinorUnitFactor  = 100
)

const (
	OtelServiceScopeName    = "service"
	OtelRepositoryScopeName = "repository"
	OtelHandlerScopeName    = "handler"
	OtelExternalScopeName   = "external"

	OtelQueryAttributeKey = "query"
	OtelS3ScopeName       = "s3"
	OtelStripeScopeName   = "stripe"
)

const (
	RequestHeaderAuthorization      = "Authorization"
	RequestHeaderUserAgent          = "User-Agent"
	RequestHeaderContentType        = "Content-Type"
	RequestHeaderRateLimit          = "X-RateLimit-Limit"
	RequestHeaderRateLimitRemaining = "X-RateLimit-Remaining"
	RequestHeaderRateLimitWindow    = "X-RateLimit-Window"
	RequestHeaderRequestID          = "X-Request-ID"
	RequestHeaderForwardedFor       = "X-Forwarded-For"
	RequestHeaderRealIP             = "X-Real-IP"
	RequestHeaderStripeSignature    = "Stripe-Signature"
)

const (
	ContentTypeJSON              = "application/json"
	ContentTypeMultipartFormData = "multipart/form-data"
	FormFileImage                = "image"
	FormFileImages               = "images"
)

const (
	ResponseErrorPrepareShutdown      = "SERVER PREPARING TO SHUT DOWN"
	ResponseErrorRequestLimitExceeded = "REQUEST LIMIT EXCEEDED"
	ResponseErrorInternal             = "internal server error"
)

const (
	ServerEnvDevelopment = "development"
	ServerEnvProduction  = "production"
)

const (
	Asterix = "*"
	Empty   = ""
)
