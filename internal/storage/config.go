package storage

const (
	KindMinio = "minio"
	KindLocal = "local"
)

// Config selects and configures the object storage.
type Config struct {
	Kind  string
	Minio MinioConfig
	Local LocalConfig

	// CreateBucketIfNotExist creates the bucket on the first store.
	CreateBucketIfNotExist bool
}

// MinioConfig
type MinioConfig struct {
	Endpoint  string
	UseSSL    bool
	AccessKey string
	SecretKey string
	Region    string
}

// LocalConfig
type LocalConfig struct {
	// Root holds one directory per bucket.
	Root string
}
