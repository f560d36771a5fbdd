package config

type AppConfig struct {
	APIPort string `env:"PORT" envDefault:"12222"`
	APIKey  string `env:"API_KEY,required"`

	// Optional event broker; no events are published when empty
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

type DatabaseConfig struct {
	Host            string `env:"POSTGRES_HOST,required"`
	Port            string `env:"POSTGRES_PORT,required"`
	User            string `env:"POSTGRES_USER,required"`
	DBName          string `env:"POSTGRES_DB_NAME,required"`
	Password        string `env:"POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
}

type StorageConfig struct {
	// "local" or "s3"
	Backend string `env:"STORAGE_BACKEND" envDefault:"local"`

	LocalDir string `env:"STORAGE_LOCAL_DIR" envDefault:"downloaded_attachments"`

	S3Region string `env:"STORAGE_S3_REGION"`
	S3Bucket string `env:"STORAGE_S3_BUCKET"`
}

type GoogleOAuthConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_REDIRECT_URL"`
}

type MicrosoftOAuthConfig struct {
	ClientID     string `env:"MICROSOFT_CLIENT_ID"`
	ClientSecret string `env:"MICROSOFT_CLIENT_SECRET"`
	RedirectURL  string `env:"MICROSOFT_REDIRECT_URL"`
	TenantID     string `env:"MICROSOFT_TENANT_ID" envDefault:"common"`
}

type IngestionConfig struct {
	// Number of accounts processed concurrently in a pass; 1 means sequential
	Workers int `env:"INGESTION_WORKERS" envDefault:"4"`

	// Upper bound on candidates taken per account per pass
	MaxMessages int `env:"INGESTION_MAX_MESSAGES" envDefault:"100"`

	// Graph message listing is paged and heavier per call, so it gets a
	// smaller default batch
	OutlookMaxMessages int `env:"INGESTION_OUTLOOK_MAX_MESSAGES" envDefault:"10"`

	// Mark messages read/processed on the provider after extraction
	MarkRead bool `env:"INGESTION_MARK_READ" envDefault:"false"`

	// Per connection attempt and per provider call
	ConnectTimeoutSeconds int `env:"INGESTION_CONNECT_TIMEOUT_SECONDS" envDefault:"30"`
	FetchTimeoutSeconds   int `env:"INGESTION_FETCH_TIMEOUT_SECONDS" envDefault:"60"`
}
