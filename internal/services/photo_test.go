package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "medequip/pkg/errors"
)

// PNG-сигнатура достаточна для http.DetectContentType.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}

func buildFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	files := form.File["photos"]
	require.Len(t, files, 1)
	return files[0]
}

type fakeStorage struct {
	saved   []string
	deleted []string
	failOn  int // после скольких успешных сохранений падать; 0 — не падать
}

func (s *fakeStorage) Save(file io.Reader, ext string) (string, error) {
	if s.failOn > 0 && len(s.saved) >= s.failOn {
		return "", fmt.Errorf("диск переполнен")
	}
	name := fmt.Sprintf("file-%d.%s", len(s.saved), ext)
	s.saved = append(s.saved, name)
	return name, nil
}

func (s *fakeStorage) Delete(basename string) error {
	s.deleted = append(s.deleted, basename)
	return nil
}

func TestPhotoIngestor_ValidateBatch(t *testing.T) {
	ingestor := NewPhotoIngestor(&fakeStorage{}, zap.NewNop())

	t.Run("корректный png проходит", func(t *testing.T) {
		fh := buildFileHeader(t, "scan.png", "image/png", pngHeader)
		assert.NoError(t, ingestor.ValidateBatch([]*multipart.FileHeader{fh}))
	})

	t.Run("jpeg с заявленным типом и сигнатурой проходит", func(t *testing.T) {
		fh := buildFileHeader(t, "photo.JPG", "image/jpeg; charset=binary", jpegHeader)
		assert.NoError(t, ingestor.ValidateBatch([]*multipart.FileHeader{fh}))
	})

	t.Run("недопустимое расширение отклоняется", func(t *testing.T) {
		fh := buildFileHeader(t, "report.pdf", "image/png", pngHeader)
		assertUnsupported(t, ingestor.ValidateBatch([]*multipart.FileHeader{fh}))
	})

	t.Run("недопустимый заявленный тип отклоняется", func(t *testing.T) {
		fh := buildFileHeader(t, "photo.png", "application/octet-stream", pngHeader)
		assertUnsupported(t, ingestor.ValidateBatch([]*multipart.FileHeader{fh}))
	})

	t.Run("подделка сигнатуры отклоняется", func(t *testing.T) {
		fh := buildFileHeader(t, "photo.png", "image/png", []byte("%PDF-1.4 это не картинка"))
		assertUnsupported(t, ingestor.ValidateBatch([]*multipart.FileHeader{fh}))
	})

	t.Run("один плохой файл отклоняет весь пакет", func(t *testing.T) {
		good := buildFileHeader(t, "ok.png", "image/png", pngHeader)
		bad := buildFileHeader(t, "bad.exe", "image/png", pngHeader)
		assertUnsupported(t, ingestor.ValidateBatch([]*multipart.FileHeader{good, bad}))
	})

	t.Run("пустой пакет валиден", func(t *testing.T) {
		assert.NoError(t, ingestor.ValidateBatch(nil))
	})
}

func assertUnsupported(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeUnsupportedFileType, httpErr.Code)
	assert.Equal(t, "photos", httpErr.Field)
}

func TestPhotoIngestor_SaveBatchRollsBackOnFailure(t *testing.T) {
	storage := &fakeStorage{failOn: 2}
	ingestor := NewPhotoIngestor(storage, zap.NewNop())

	files := []*multipart.FileHeader{
		buildFileHeader(t, "a.png", "image/png", pngHeader),
		buildFileHeader(t, "b.png", "image/png", pngHeader),
		buildFileHeader(t, "c.png", "image/png", pngHeader),
	}

	saved, err := ingestor.SaveBatch(files)
	require.Error(t, err)
	assert.Nil(t, saved)
	// Два успешно сохранённых файла удалены при откате.
	assert.Equal(t, storage.saved, storage.deleted)
}

func TestPhotoIngestor_SaveBatchSuccess(t *testing.T) {
	storage := &fakeStorage{}
	ingestor := NewPhotoIngestor(storage, zap.NewNop())

	files := []*multipart.FileHeader{
		buildFileHeader(t, "a.png", "image/png", pngHeader),
		buildFileHeader(t, "b.jpeg", "image/jpeg", jpegHeader),
	}

	saved, err := ingestor.SaveBatch(files)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
	assert.Empty(t, storage.deleted)
}
