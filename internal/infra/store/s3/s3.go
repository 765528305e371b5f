package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/davay42/sw-gallery/internal/domain"
)

// Метаданные картинки храним на самом объекте: Content-Type — штатно,
// timestamp записи — в user metadata.
const metaTimestamp = "Gallery-Ts"

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

type Store struct {
	cl     *minio.Client
	bucket string
	log    *log.Logger
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Store, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	return &Store{cl: cl, bucket: cfg.Bucket, log: logger}, nil
}

func (s *Store) Get(ctx context.Context, filename string) (domain.StoredItem, error) {
	obj, err := s.cl.GetObject(ctx, s.bucket, filename, minio.GetObjectOptions{})
	if err != nil {
		return domain.StoredItem{}, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return domain.StoredItem{}, fmt.Errorf("%q: %w", filename, domain.ErrNotFound)
		}
		return domain.StoredItem{}, fmt.Errorf("%w: stat %q: %v", domain.ErrStore, filename, err)
	}
	blob, err := io.ReadAll(obj)
	if err != nil {
		return domain.StoredItem{}, fmt.Errorf("%w: read %q: %v", domain.ErrStore, filename, err)
	}
	return domain.StoredItem{
		Filename:  filename,
		Blob:      blob,
		Timestamp: timestampFrom(info.UserMetadata, info.LastModified.UnixMilli()),
		Size:      info.Size,
		Type:      info.ContentType,
	}, nil
}

func (s *Store) GetAll(ctx context.Context) ([]domain.StoredItem, error) {
	var items []domain.StoredItem
	for info := range s.cl.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{WithMetadata: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("%w: list: %v", domain.ErrStore, info.Err)
		}
		mt := info.ContentType
		if mt == "" {
			mt = domain.TypeByFilename(info.Key)
		}
		items = append(items, domain.StoredItem{
			Filename:  info.Key,
			Timestamp: timestampFrom(info.UserMetadata, info.LastModified.UnixMilli()),
			Size:      info.Size,
			Type:      mt,
		})
	}
	return items, nil
}

func (s *Store) Put(ctx context.Context, item domain.StoredItem) error {
	_, err := s.cl.PutObject(ctx, s.bucket, item.Filename, bytes.NewReader(item.Blob), item.Size,
		minio.PutObjectOptions{
			ContentType:  item.Type,
			UserMetadata: map[string]string{metaTimestamp: strconv.FormatInt(item.Timestamp, 10)},
		})
	if err != nil {
		return fmt.Errorf("%w: put %q: %v", domain.ErrStore, item.Filename, err)
	}
	s.log.Printf("PUT %q ok (%d bytes)", item.Filename, item.Size)
	return nil
}

// Delete идемпотентен: RemoveObject для несуществующего ключа не ошибка.
func (s *Store) Delete(ctx context.Context, filename string) error {
	if err := s.cl.RemoveObject(ctx, s.bucket, filename, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: delete %q: %v", domain.ErrStore, filename, err)
	}
	s.log.Printf("DELETE %q ok", filename)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	ok, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

func (s *Store) Close() {}

// timestampFrom достаёт timestamp из user metadata; в листинге ключи
// приходят с префиксом X-Amz-Meta-.
func timestampFrom(meta minio.StringMap, fallback int64) int64 {
	for _, k := range []string{metaTimestamp, "X-Amz-Meta-" + metaTimestamp} {
		if v, ok := meta[k]; ok {
			if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
				return ts
			}
		}
	}
	return fallback
}
