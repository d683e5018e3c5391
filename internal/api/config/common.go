package config

// Config 配置主体
type Config struct {
	Server                ServerConfig          `mapstructure:"server"`
	DB                    DBConfig              `mapstructure:"database"`
	Redis                 RedisConfig           `mapstructure:"redis"`
	ClickHouse            ClickHouseConfig      `mapstructure:"clickhouse"`
	MinIO                 MinIOConfig           `mapstructure:"minio"`
	Kafka                 KafkaConfig           `mapstructure:"kafka"`
	KafkaScheduleConsumer KafkaScheduleConsumer `mapstructure:"kafka_schedule_consumer"`
	Scheduler             SchedulerConfig       `mapstructure:"scheduler"`
	Token                 TokenConfig           `mapstructure:"token"`
	Logstash              LogstashConfig        `mapstructure:"logstash"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// ClickHouseConfig 指标时序库配置
type ClickHouseConfig struct {
	Addrs    []string `mapstructure:"addrs"`
	Database string   `mapstructure:"database"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	Debug    bool     `mapstructure:"debug"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaScheduleConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// SchedulerConfig 调度配置
type SchedulerConfig struct {
	DispatchIntervalSeconds int `mapstructure:"dispatch_interval_seconds"`
}

// TokenConfig 凭证刷新配置
type TokenConfig struct {
	FreshnessDays int    `mapstructure:"freshness_days"`
	CheckCron     string `mapstructure:"check_cron"`
	Backfill      bool   `mapstructure:"backfill"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}
