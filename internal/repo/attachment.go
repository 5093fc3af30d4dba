package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// storeAttempts — сколько раз пробуем новое имя, если сгенерированное уже занято.
const storeAttempts = 3

// AttachmentStore управляет загруженными файлами анкет.
// Файлы лежат плоско в одном каталоге и адресуются только по имени.
type AttachmentStore interface {
	// Store сохраняет содержимое под новым уникальным именем с исходным расширением.
	// Существующие файлы никогда не перезаписываются.
	Store(ctx context.Context, field, originalName string, src io.Reader) (string, error)

	// Release удаляет файл; отсутствие файла ошибкой не считается.
	Release(ctx context.Context, filename string) error

	// http.FileSystem — только чтение, для раздачи /uploads/.
	http.FileSystem
}

type fsAttachmentStore struct {
	dir string
	now func() time.Time
}

// NewFSAttachmentStore создаёт хранилище вложений в каталоге dir.
func NewFSAttachmentStore(dir string) (AttachmentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: mkdir %s: %v", ErrIO, dir, err)
	}
	return &fsAttachmentStore{dir: dir, now: time.Now}, nil
}

// generateName строит имя вида <field>-<unix ms>-<random><ext>.
// Вероятность коллизии мала, но не нулевая; от неё защищает O_EXCL в Store.
func (s *fsAttachmentStore) generateName(field, originalName string) string {
	ext := filepath.Ext(filepath.Base(originalName))
	if strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return fmt.Sprintf("%s-%d-%d%s", field, s.now().UnixMilli(), uuid.New().ID()%1_000_000_000, ext)
}

func (s *fsAttachmentStore) Store(_ context.Context, field, originalName string, src io.Reader) (string, error) {
	for attempt := 0; attempt < storeAttempts; attempt++ {
		name := s.generateName(field, originalName)
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: create %s: %v", ErrIO, name, err)
		}

		if _, err := io.Copy(f, src); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("%w: write %s: %v", ErrIO, name, err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", fmt.Errorf("%w: close %s: %v", ErrIO, name, err)
		}
		return name, nil
	}
	return "", fmt.Errorf("%w: could not allocate unique name for %q", ErrIO, originalName)
}

// validName отсекает имена, выходящие за пределы каталога вложений.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

func (s *fsAttachmentStore) Release(_ context.Context, filename string) error {
	if !validName(filename) {
		return fmt.Errorf("%w: invalid attachment name %q", ErrIO, filename)
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: remove %s: %v", ErrIO, filename, err)
}

// Open отдаёт файл для http.FileServer. Листинг каталога запрещён.
func (s *fsAttachmentStore) Open(name string) (http.File, error) {
	clean := strings.TrimPrefix(filepath.ToSlash(name), "/")
	if !validName(clean) {
		return nil, fs.ErrNotExist
	}
	return http.Dir(s.dir).Open("/" + clean)
}
