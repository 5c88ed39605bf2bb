package config

const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"

	ObjectStoreMemory = "memory"
	ObjectStoreS3     = "s3"
)

type StorageConfig interface {
	GetSessionStore() string
	GetSessionDBPath() string
	GetObjectStore() string
	GetS3() S3Settings
	GetPublicBucketDomain() string
	GetMaxUploadBytes() int64
}

type BatchConfig interface {
	GetBatchWorkers() int
	GetBatchOpsPerSecond() float64
}

// S3Settings describes an S3-compatible bucket (AWS S3, Cloudflare R2, MinIO).
type S3Settings struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

type Storage struct {
	SessionStore       string `env:"SESSION_STORE" envDefault:"memory"`
	SessionDBPath      string `env:"SESSION_DB_PATH" envDefault:"./data/sessions.db"`
	ObjectStore        string `env:"OBJECT_STORE" envDefault:"memory"`
	S3Bucket           string `env:"S3_BUCKET"`
	S3Endpoint         string `env:"S3_ENDPOINT"`
	S3Region           string `env:"S3_REGION" envDefault:"auto"`
	S3AccessKeyID      string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey  string `env:"S3_SECRET_ACCESS_KEY"`
	S3ForcePathStyle   bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
	PublicBucketDomain string `env:"PUBLIC_BUCKET_DOMAIN"`
	MaxUploadBytes     int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

var _ StorageConfig = Storage{}

func (s Storage) GetSessionStore() string {
	return s.SessionStore
}

func (s Storage) GetSessionDBPath() string {
	return s.SessionDBPath
}

func (s Storage) GetObjectStore() string {
	return s.ObjectStore
}

func (s Storage) GetS3() S3Settings {
	return S3Settings{
		Bucket:          s.S3Bucket,
		Endpoint:        s.S3Endpoint,
		Region:          s.S3Region,
		AccessKeyID:     s.S3AccessKeyID,
		SecretAccessKey: s.S3SecretAccessKey,
		ForcePathStyle:  s.S3ForcePathStyle,
	}
}

func (s Storage) GetPublicBucketDomain() string {
	return s.PublicBucketDomain
}

func (s Storage) GetMaxUploadBytes() int64 {
	if s.MaxUploadBytes <= 0 {
		return 10 * 1024 * 1024 // 10MB
	}
	return s.MaxUploadBytes
}

type Batch struct {
	Workers      int     `env:"BATCH_WORKERS" envDefault:"8"`
	OpsPerSecond float64 `env:"BATCH_OPS_PER_SECOND" envDefault:"0"`
}

var _ BatchConfig = Batch{}

func (b Batch) GetBatchWorkers() int {
	if b.Workers <= 0 {
		return 1
	}
	return b.Workers
}

func (b Batch) GetBatchOpsPerSecond() float64 {
	return b.OpsPerSecond
}
