package service

type Config struct {
	// postgres DSNs carry credentials, keep the URI out of /config
	DatabaseUri             string   `envconfig:"DATABASE_URI" default:"events.db" json:"-"`
	DatabaseMaxConns        int      `envconfig:"DATABASE_MAX_CONNS" default:"10" json:"-"`
	DatabaseMaxIdleConns    int      `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5" json:"-"`
	DatabaseConnMaxLifetime int      `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"1800" json:"-"` // 30 minutes
	RelayUris               []string `envconfig:"RELAY_URIS" required:"true" json:"relay_uris"`
	EventKinds              []int    `envconfig:"EVENT_KINDS" default:"0,1,7,9734,9735,30023,30024" json:"event_kinds"`
	Host                    string   `envconfig:"HOST" default:"localhost:3000" json:"host"`
	Port                    int      `envconfig:"PORT" default:"3000" json:"port"`
	LogFilePath             string   `envconfig:"LOG_FILE_PATH" json:"-"`
	SentryDSN               string   `envconfig:"SENTRY_DSN" json:"-"`
	SentryTracesSampleRate  float64  `envconfig:"SENTRY_TRACES_SAMPLE_RATE" json:"-"`
	DatadogAgentUrl         string   `envconfig:"DATADOG_AGENT_URL" json:"-"`
	IngestionBuffer         int      `envconfig:"INGESTION_BUFFER" default:"256" json:"ingestion_buffer"`
	ReconnectMaxInterval    int      `envconfig:"RELAY_RECONNECT_MAX_INTERVAL" default:"120" json:"-"` // in seconds
	DefaultRateLimit        int      `envconfig:"DEFAULT_RATE_LIMIT" default:"50" json:"-"`
	BurstRateLimit          int      `envconfig:"BURST_RATE_LIMIT" default:"10" json:"-"`
	CacheEnabled            bool     `envconfig:"CACHE_ENABLED" default:"false" json:"-"`
	CacheTTL                int      `envconfig:"CACHE_TTL" default:"60" json:"-"` // in seconds
	EnablePrometheus        bool     `envconfig:"ENABLE_PROMETHEUS" default:"false" json:"-"`
	PrometheusPort          int      `envconfig:"PROMETHEUS_PORT" default:"9092" json:"-"`
	RabbitMQUri             string   `envconfig:"RABBITMQ_URI" json:"-"`
	RabbitMQEventExchange   string   `envconfig:"RABBITMQ_EVENT_EXCHANGE" default:"chest_event" json:"-"`
}
