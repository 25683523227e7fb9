// Пакет предоставляет интерфейс и реализации хранилища артефактов экспорта: локальный каталог и Minio.
// Он обеспечивает операции сохранения, загрузки, удаления и перебора файлов, а также поддержку метаданных.
package filestorage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	UploadTries = 3
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidName = errors.New("invalid file name")
)

var uploadRetryDelay = time.Second * 2

type Metadata struct {
	Format string
	Title  string
}

type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

func (m Metadata) GetMap() map[string]string {
	meta := make(map[string]string)
	if m.Format != "" {
		meta["format"] = m.Format
	}
	if m.Title != "" {
		meta["title"] = m.Title
	}
	return meta
}

type FileStorage interface {
	Save(ctx context.Context, data []byte, name string, contentType string, metadata *Metadata) error
	LoadReader(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	Exist(ctx context.Context, name string) (bool, error)
	ListRoot(ctx context.Context, fn func(FileInfo) error) error
	GetFileInfo(ctx context.Context, name string) (*FileInfo, error)
}

// NewName генерирует имя артефакта: uuid и расширение формата.
func NewName(ext string) string {
	return uuid.Must(uuid.NewV4()).String() + ext
}

// ValidateName проверяет, что имя сгенерировано NewName.
func ValidateName(name string) error {
	id := strings.TrimSuffix(name, filepath.Ext(name))
	if _, err := uuid.FromString(id); err != nil || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

type LocalStorage struct {
	rootDir string
}

func NewLocalStorage(rootPath string) (FileStorage, error) {
	if err := os.MkdirAll(rootPath, 0755); err != nil {
		return nil, err
	}
	return &LocalStorage{rootPath}, nil
}

func (s *LocalStorage) path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.rootDir, name), nil
}

func (s *LocalStorage) Save(_ context.Context, data []byte, name string, _ string, _ *Metadata) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

func (s *LocalStorage) LoadReader(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *LocalStorage) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (s *LocalStorage) Exist(ctx context.Context, name string) (bool, error) {
	_, err := s.GetFileInfo(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *LocalStorage) ListRoot(ctx context.Context, fn func(FileInfo) error) error {
	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fi, err := s.GetFileInfo(ctx, e.Name())
		if err != nil {
			continue
		}
		if err := fn(*fi); err != nil {
			return err
		}
	}
	return nil
}

func (s *LocalStorage) GetFileInfo(_ context.Context, name string) (*FileInfo, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	stat, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &FileInfo{
		Name:        name,
		Size:        stat.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		CreatedAt:   stat.ModTime(),
	}, nil
}

type MinioStorage struct {
	client     *minio.Client
	bucketName string
}

func NewMinioStorage(endpoint string, accessKeyID string, secretAccessKey string, useSSL bool, bucketName string) (FileStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return nil, err
	}

	if !exists {
		// Create bucket if not exist
		if err := client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStorage{client, bucketName}, nil
}

func (s *MinioStorage) Save(ctx context.Context, data []byte, name string, contentType string, metadata *Metadata) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	putOptions := minio.PutObjectOptions{ContentType: contentType}
	if metadata != nil {
		putOptions.UserTags = metadata.GetMap()
	}

	var err error
	for i := range UploadTries {
		_, err = s.client.PutObject(ctx,
			s.bucketName,
			name,
			bytes.NewReader(data),
			int64(len(data)),
			putOptions,
		)
		if err == nil {
			return nil
		}
		resp := minio.ToErrorResponse(err)
		slog.Error("Upload file to minio", "name", name, "try", i+1, "code", resp.StatusCode, "msg", resp.Message)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(uploadRetryDelay):
		}
	}
	return err
}

func (s *MinioStorage) LoadReader(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if ok, err := s.Exist(ctx, name); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotFound
	}
	return s.client.GetObject(ctx,
		s.bucketName,
		name,
		minio.GetObjectOptions{},
	)
}

func (s *MinioStorage) Delete(ctx context.Context, name string) error {
	return s.client.RemoveObject(
		ctx,
		s.bucketName,
		name,
		minio.RemoveObjectOptions{},
	)
}

func (s *MinioStorage) Exist(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(
		ctx,
		s.bucketName,
		name,
		minio.StatObjectOptions{},
	)
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *MinioStorage) ListRoot(ctx context.Context, fn func(info FileInfo) error) error {
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return obj.Err
		}
		if err := fn(FileInfo{
			Name:        obj.Key,
			Size:        obj.Size,
			ContentType: obj.ContentType,
			CreatedAt:   obj.LastModified,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *MinioStorage) GetFileInfo(ctx context.Context, name string) (*FileInfo, error) {
	stat, err := s.client.StatObject(ctx, s.bucketName, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &FileInfo{
		Name:        name,
		Size:        stat.Size,
		ContentType: stat.ContentType,
		CreatedAt:   stat.LastModified,
	}, nil
}
