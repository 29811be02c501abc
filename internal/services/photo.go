package services

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "medequip/pkg/errors"
	"medequip/pkg/filestorage"
)

// Политика приёма фотографий: расширение из белого списка, заявленный
// и фактический (по сигнатуре) MIME-тип — изображение.
var allowedPhotoExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
	".bmp": true, ".gif": true, ".tiff": true, ".tif": true,
}

var allowedPhotoMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type PhotoIngestorInterface interface {
	ValidateBatch(files []*multipart.FileHeader) error
	SaveBatch(files []*multipart.FileHeader) ([]string, error)
	DeleteBatch(basenames []string)
}

type photoIngestor struct {
	storage filestorage.FileStorageInterface
	logger  *zap.Logger
}

func NewPhotoIngestor(storage filestorage.FileStorageInterface, logger *zap.Logger) PhotoIngestorInterface {
	return &photoIngestor{storage: storage, logger: logger}
}

// ValidateBatch проверяет все файлы до записи чего-либо на диск.
// Один непригодный файл отклоняет весь пакет.
func (p *photoIngestor) ValidateBatch(files []*multipart.FileHeader) error {
	for _, fh := range files {
		if err := p.validateOne(fh); err != nil {
			return err
		}
	}
	return nil
}

func (p *photoIngestor) validateOne(fh *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedPhotoExtensions[ext] {
		p.logger.Warn("фотография отклонена по расширению", zap.String("filename", fh.Filename))
		return apperrors.NewUnsupportedFileTypeError()
	}

	declared, _, _ := strings.Cut(fh.Header.Get("Content-Type"), ";")
	if !allowedPhotoMimeTypes[strings.TrimSpace(declared)] {
		p.logger.Warn("фотография отклонена по заявленному типу",
			zap.String("filename", fh.Filename), zap.String("content_type", declared))
		return apperrors.NewUnsupportedFileTypeError()
	}

	file, err := fh.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	// Сигнатуру читаем из первых 512 байт, как того требует DetectContentType.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && n == 0 {
		p.logger.Warn("фотография отклонена: пустой файл", zap.String("filename", fh.Filename))
		return apperrors.NewUnsupportedFileTypeError()
	}
	sniffed, _, _ := strings.Cut(http.DetectContentType(head[:n]), ";")
	if !allowedPhotoMimeTypes[strings.TrimSpace(sniffed)] {
		p.logger.Warn("фотография отклонена по сигнатуре",
			zap.String("filename", fh.Filename), zap.String("sniffed", sniffed))
		return apperrors.NewUnsupportedFileTypeError()
	}
	return nil
}

// SaveBatch сохраняет файлы по одному; при любом сбое уже сохранённые
// файлы удаляются, пакет атомарен на уровне файловой системы.
func (p *photoIngestor) SaveBatch(files []*multipart.FileHeader) ([]string, error) {
	saved := make([]string, 0, len(files))
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			p.DeleteBatch(saved)
			return nil, err
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
		basename, err := p.storage.Save(file, ext)
		file.Close()
		if err != nil {
			p.DeleteBatch(saved)
			return nil, err
		}
		saved = append(saved, basename)
	}
	return saved, nil
}

// DeleteBatch удаляет файлы по базовым именам. Ошибки удаления только
// логируются: откат не должен маскировать исходную ошибку.
func (p *photoIngestor) DeleteBatch(basenames []string) {
	for _, name := range basenames {
		if err := p.storage.Delete(name); err != nil {
			p.logger.Error("не удалось удалить файл фотографии", zap.String("file", name), zap.Error(err))
		}
	}
}
