package response

import (
	"encoding/json"
	"localguide/shared/constant"
	"localguide/shared/failure"
	"localguide/shared/logger"
	"net/http"
	"sync/atomic"
)

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error  *string              `json:"error,omitempty"`
	Errors []failure.FieldError `json:"errors,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

type DataWithMessage[T any] struct {
	Message *string `json:"message,omitempty"`
	Data    *T      `json:"data,omitempty"`
}

var exposeInternal atomic.Bool

// ExposeInternalErrors controls whether unexpected error messages reach the client.
func ExposeInternalErrors(expose bool) {
	exposeInternal.Store(expose)
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Message: &message})
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload interface{}) {
	response(writer, code, Data[any]{Data: &jsonPayload})
}

// WithJSONMessage sends a JSON object together with a confirmation message
func WithJSONMessage(writer http.ResponseWriter, code int, message string, jsonPayload interface{}) {
	response(writer, code, DataWithMessage[any]{Message: &message, Data: &jsonPayload})
}

// WithError sends a response with an error message. Errors that are not a failure.Failure are
// reported as internal errors without their message unless exposure is enabled.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	errMsg := err.Error()

	if !failure.IsCode(err, code) && !exposeInternal.Load() {
		errMsg = constant.ResponseErrorInternal
	}

	response(writer, code, Error{Error: &errMsg, Errors: failure.GetFieldErrors(err)})
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithNotFound answers requests that matched no route
func WithNotFound(writer http.ResponseWriter, request *http.Request) {
	WithError(writer, failure.NotFound("Route "+request.URL.Path+" not found"))
}

func response(writer http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
