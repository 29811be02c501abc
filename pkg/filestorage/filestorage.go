package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStorageInterface определяет контракт для хранения файлов фотографий.
// В БД хранится только базовое имя файла (uuid + расширение).
type FileStorageInterface interface {
	Save(file io.Reader, ext string) (basename string, err error)
	Delete(basename string) error
}

type LocalFileStorage struct {
	basePath string
}

func NewLocalFileStorage(basePath string) (FileStorageInterface, error) {
	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию для хранения файлов: %w", err)
		}
	}
	return &LocalFileStorage{basePath: basePath}, nil
}

// Save пишет содержимое под глобально уникальным именем <uuid>.<ext>.
func (s *LocalFileStorage) Save(file io.Reader, ext string) (string, error) {
	basename := fmt.Sprintf("%s.%s", uuid.New().String(), strings.TrimPrefix(ext, "."))

	dst, err := os.Create(filepath.Join(s.basePath, basename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		// Недописанный файл не должен оставаться на диске.
		_ = os.Remove(filepath.Join(s.basePath, basename))
		return "", err
	}

	return basename, nil
}

// Delete удаляет файл по базовому имени. Отсутствующий файл — не ошибка.
func (s *LocalFileStorage) Delete(basename string) error {
	fullPath := filepath.Join(s.basePath, filepath.Base(basename))

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(fullPath)
}
