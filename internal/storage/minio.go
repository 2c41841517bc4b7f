package storage

import (
	"context"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/weak-head/segy-pipe/internal/logger"
)

// minioStorage is an S3 compatible object storage.
type minioStorage struct {
	conf   Config
	client *minio.Client

	// buckets known to exist
	buckets sync.Map

	log logger.Log
}

// NewMinioStorage creates a minio client.
// The client does not connect until the first request.
func NewMinioStorage(conf Config, log logger.Log) (*minioStorage, error) {
	l := log.WithFields(logger.Fields{
		logger.FieldPackage:  "storage",
		logger.FieldFunction: "NewMinioStorage",
		"endpoint": conf.Minio.Endpoint,
	})

	if conf.Minio.Endpoint == "" {
		l.Error(ErrNoEndpoint, "Failed to create a new minio client.")
		return nil, ErrNoEndpoint
	}

	client, err := minio.New(conf.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.Minio.AccessKey, conf.Minio.SecretKey, ""),
		Secure: conf.Minio.UseSSL,
		Region: conf.Minio.Region,
	})
	if err != nil {
		l.Error(err, "Failed to create a new minio client.")
		return nil, err
	}

	l.Info("Created a new minio storage client.")
	return &minioStorage{
		conf:   conf,
		client: client,
		log:    log.WithField(logger.FieldPackage, "storage"),
	}, nil
}

// Open stats the object and returns its content stream.
func (m *minioStorage) Open(ctx context.Context, bucket string, objectName string) (io.ReadCloser, int64, error) {
	if bucket == "" || objectName == "" {
		return nil, 0, ErrInvalidName
	}

	obj, err := m.client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, err
	}

	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, err
	}

	m.log.WithFields(logger.Fields{
		logger.FieldFunction: "minioStorage.Open",
		"bucket": bucket,
		"object": objectName,
		"size":   info.Size,
	}).Debug("Opened the object stream.")

	return obj, info.Size, nil
}

// Store streams r into the object.
func (m *minioStorage) Store(
	ctx context.Context,
	bucket string,
	objectName string,
	r io.Reader,
	size int64,
	contentType string,
) error {
	if bucket == "" || objectName == "" {
		return ErrInvalidName
	}

	log := m.log.WithFields(logger.Fields{
		logger.FieldFunction: "minioStorage.Store",
		"bucket": bucket,
		"object": objectName,
	})

	if err := m.ensureBucket(ctx, bucket); err != nil {
		log.Error(err, "Failed to ensure the bucket exists.")
		return err
	}

	info, err := m.client.PutObject(ctx, bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return err
	}

	if info.Size != size {
		return ErrSizeMismatch
	}

	log.WithField("size", info.Size).Debug("Uploaded the object.")
	return nil
}

// ensureBucket checks the bucket once and creates it when configured to.
func (m *minioStorage) ensureBucket(ctx context.Context, bucket string) error {
	if _, ok := m.buckets.Load(bucket); ok {
		return nil
	}

	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if !exists {
		if !m.conf.CreateBucketIfNotExist {
			return ErrBucketNotFound
		}
		if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.conf.Minio.Region}); err != nil {
			return err
		}
		m.log.WithField("bucket", bucket).Info("A new bucket has been created.")
	}

	m.buckets.Store(bucket, struct{}{})
	return nil
}
