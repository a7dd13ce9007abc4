package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"localguide/infras/otel"
	"localguide/internal/domains/upload/model/dto"
	"localguide/internal/domains/upload/service"
	"localguide/shared/constant"
	"localguide/shared/failure"
	"localguide/shared/validator"
	"localguide/transport/http/middleware"
	"localguide/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Upload
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Upload, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/uploads", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Authenticate)

		routerGroup.Post("/single", handler.UploadSingle)
		routerGroup.Post("/multiple", handler.UploadMultiple)
		routerGroup.Delete("/", handler.DeleteFile)
	})
}

// UploadSingle stores one image.
// @Summary Upload an image
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image (JPEG, PNG or WebP)"
// @Success 200 {object} response.Data[dto.UploadResponse] "File uploaded successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/uploads/single [post]
// @Security BearerAuth
func (handler *Handler) UploadSingle(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadSingle")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		err = failure.BadRequest(err)

		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, err)

		return
	}

	var file *dto.File

	if headers := r.MultipartForm.File[dto.FieldSingle]; len(headers) > 0 {
		read, err := readFile(headers[0])
		if err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Msg("failed to read uploaded file")

			response.WithError(w, err)

			return
		}

		file = &read
	}

	res, err := handler.service.Single(ctx, file)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload file")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("File uploaded successfully")

	response.WithJSONMessage(w, http.StatusOK, "File uploaded successfully", res)
}

// UploadMultiple stores several images at once.
// @Summary Upload images
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param images formData file true "Images (JPEG, PNG or WebP)"
// @Success 200 {object} response.Data[[]dto.UploadResponse] "Files uploaded successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/uploads/multiple [post]
// @Security BearerAuth
func (handler *Handler) UploadMultiple(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadMultiple")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		err = failure.BadRequest(err)

		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, err)

		return
	}

	headers := r.MultipartForm.File[dto.FieldMultiple]
	files := make([]dto.File, 0, len(headers))

	for _, header := range headers {
		file, err := readFile(header)
		if err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Msg("failed to read uploaded file")

			response.WithError(w, err)

			return
		}

		files = append(files, file)
	}

	res, err := handler.service.Multiple(ctx, files)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload files")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Files uploaded successfully")

	response.WithJSONMessage(w, http.StatusOK, "Files uploaded successfully", res)
}

// DeleteFile removes a stored image by public id or URL.
// @Summary Delete an image
// @Tags Upload
// @Accept json
// @Produce json
// @Param request body dto.DeleteFileRequest true "Delete File Request"
// @Success 200 {object} response.Message "File deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/uploads [delete]
// @Security BearerAuth
func (handler *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteFile")
	defer scope.End()

	req := dto.DeleteFileRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete file")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("File deleted successfully")

	response.WithMessage(w, http.StatusOK, "File deleted successfully")
}

func readFile(header *multipart.FileHeader) (dto.File, error) {
	src, err := header.Open()
	if err != nil {
		return dto.File{}, failure.BadRequest(fmt.Errorf("failed to open %s: %w", header.Filename, err))
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return dto.File{}, failure.BadRequest(fmt.Errorf("failed to read %s: %w", header.Filename, err))
	}

	return dto.File{
		Name:        header.Filename,
		ContentType: header.Header.Get(constant.RequestHeaderContentType),
		Data:        data,
	}, nil
}
