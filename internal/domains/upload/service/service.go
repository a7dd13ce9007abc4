package service

import (
	"context"
	"fmt"
	"localguide/config"
	"localguide/infras/otel"
	"localguide/infras/s3"
	"localguide/internal/domains/upload/model/dto"
	"localguide/shared/constant"
	"localguide/shared/failure"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFolder   = "local-guide"
	defaultMaxMB    = 5
	defaultMaxFiles = 10
	bytesPerMB      = 1024 * 1024
)

type Upload interface {
	Single(ctx context.Context, file *dto.File) (dto.UploadResponse, error)
	Multiple(ctx context.Context, files []dto.File) ([]dto.UploadResponse, error)
	Delete(ctx context.Context, req dto.DeleteFileRequest) error
}

type serviceImpl struct {
	s3   s3.S3
	cfg  *config.Config
	otel otel.Otel
}

func New(s3 s3.S3, cfg *config.Config, otel otel.Otel) Upload {
	return &serviceImpl{
		s3:   s3,
		cfg:  cfg,
		otel: otel,
	}
}

func (s *serviceImpl) Single(ctx context.Context, file *dto.File) (res dto.UploadResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Single")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if file == nil {
		return res, failure.BadRequestFromString("No file provided")
	}

	if err = s.check(*file); err != nil {
		return res, err
	}

	return s.put(ctx, *file)
}

func (s *serviceImpl) Multiple(ctx context.Context, files []dto.File) (res []dto.UploadResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Multiple")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(files) == 0 {
		return nil, failure.BadRequestFromString("No files provided")
	}

	if limit := s.maxFiles(); len(files) > limit {
		return nil, failure.BadRequestFromString(fmt.Sprintf("You can upload at most %d files at once", limit))
	}

	for _, file := range files {
		if err = s.check(file); err != nil {
			return nil, err
		}
	}

	res = make([]dto.UploadResponse, len(files))
	group, ctx := errgroup.WithContext(ctx)

	for i, file := range files {
		group.Go(func() (err error) {
			res[i], err = s.put(ctx, file)

			return err
		})
	}

	if err = group.Wait(); err != nil {
		return nil, err // nolint:wrapcheck
	}

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, req dto.DeleteFileRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	publicID := strings.TrimSpace(req.PublicID)
	if publicID == constant.Empty && req.URL != constant.Empty {
		publicID = s.s3.GetObjectNameFromURL(strings.TrimSpace(req.URL))
	}

	if publicID == constant.Empty {
		return failure.BadRequestFromString("No public ID provided")
	}

	if err = s.s3.Delete(ctx, publicID); err != nil {
		log.Error().Err(err).Str("publicID", publicID).Msg("failed to delete file")

		return failure.InternalError(fmt.Errorf("delete failed: %w", err))
	}

	return nil
}

func (s *serviceImpl) check(file dto.File) error {
	if !file.IsAllowedType() {
		return failure.BadRequestFromString("Only JPEG, PNG, and WebP images are allowed")
	}

	if maxMB := s.maxFileSizeMB(); float64(len(file.Data)) > maxMB*bytesPerMB {
		return failure.BadRequestFromString(fmt.Sprintf("File %s exceeds the %gMB limit", file.Name, maxMB))
	}

	return nil
}

func (s *serviceImpl) put(ctx context.Context, file dto.File) (res dto.UploadResponse, err error) {
	result, err := s.s3.Upload(ctx, s.folder(), file.ObjectName(), strings.ToLower(file.ContentType), file.Data)
	if err != nil {
		log.Error().Err(err).Str("file", file.Name).Msg("failed to upload file")

		return res, failure.InternalError(fmt.Errorf("upload failed: %w", err))
	}

	res.FromResult(result)

	return res, nil
}

func (s *serviceImpl) folder() string {
	if s.cfg.App.Upload.Folder != constant.Empty {
		return s.cfg.App.Upload.Folder
	}

	return defaultFolder
}

func (s *serviceImpl) maxFileSizeMB() float64 {
	if s.cfg.App.Upload.MaxFileSizeMB > 0 {
		return s.cfg.App.Upload.MaxFileSizeMB
	}

	return defaultMaxMB
}

func (s *serviceImpl) maxFiles() int {
	if s.cfg.App.Upload.MaxFiles > 0 {
		return s.cfg.App.Upload.MaxFiles
	}

	return defaultMaxFiles
}
