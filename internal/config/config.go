package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// DBCredential struct
type DBCredential struct {
	Address  string `yaml:"address"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
}

func (c *DBCredential) Dsn() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		c.Address, c.Port, c.User, c.Password, c.Database)
}

// GetRedisAddress prints redis credential info.
func (c *DBCredential) GetRedisAddress() string {
	return fmt.Sprintf("%v:%v", c.Address, c.Port)
}

func (c *DBCredential) Enabled() bool {
	return c.Address != ""
}

// Configuration struct
type Configuration struct {
	LogLevel         int          `yaml:"log_level"`
	Environment      string       `yaml:"environment"`
	Server           Server       `yaml:"server"`
	RedisCredential  DBCredential `yaml:"redis"`
	Postgres         DBCredential `yaml:"postgres"`
	Game             Game         `yaml:"game"`
	Identity         Identity     `yaml:"identity"`
	Provision        Provision    `yaml:"provision"`
	AwsS3            aws          `yaml:"aws"`
	Kafka            Kafka        `yaml:"kafka"`
	SentryDSN        string       `yaml:"sentry_dsn"`
	LarkAlarmWebhook string       `yaml:"lark_alarm_webhook"`
}

type Server struct {
	Port              string `yaml:"port"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
	// guards /internal/* when non empty
	InternalToken string `yaml:"internal_token"`
	// answer submissions allowed per (post, user) per minute, zero disables the limiter
	AnswerRatePerMin int `yaml:"answer_rate_per_min"`
}

func (in Server) RequestTimeout() time.Duration {
	return time.Duration(in.RequestTimeoutSec) * time.Second
}

type GameStore string

const (
	GameStoreRedis  = GameStore("redis")
	GameStoreMemory = GameStore("memory")
)

type Game struct {
	Store             GameStore `yaml:"store"`
	MaxClaims         int64     `yaml:"max_claims"`
	AnonymousUsername string    `yaml:"anonymous_username"`
	// empty means the embedded catalog
	CatalogPath string `yaml:"catalog_path"`
	// seconds an item stays in the redis item cache, zero keeps it forever
	ItemCacheTTLSec int `yaml:"item_cache_ttl_sec"`
}

type Identity struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type Provision struct {
	IntervalMin   int    `yaml:"interval_min"`
	SubredditName string `yaml:"subreddit_name"`
	NodeID        int64  `yaml:"node_id"`
}

func (in Provision) Interval() time.Duration {
	return time.Duration(in.IntervalMin) * time.Minute
}

type Kafka struct {
	Servers    string `yaml:"servers"`
	ClaimTopic string `yaml:"claim_topic"`
	PostTopic  string `yaml:"post_topic"`
}

// aws conf
type aws struct {
	Bucket awsBucket `yaml:"bucket"`
	// key prefix of claimant exports
	ExportPrefix string `yaml:"export_prefix"`
}

type awsBucket struct {
	Name   string `yaml:"name"`
	Region string `yaml:"region"`
}

func (in aws) Enabled() bool {
	return in.Bucket.Name != "" && in.Bucket.Region != ""
}

const (
	defaultPort              = "8080"
	defaultRequestTimeoutSec = 10
	defaultMaxClaims         = 100
	defaultAnonymousUsername = "anonymous"
	defaultClaimTopic        = "collectible_claimed"
	defaultPostTopic         = "item_published"
	defaultExportPrefix      = "claimants/"
)

func (c *Configuration) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Server.RequestTimeoutSec <= 0 {
		c.Server.RequestTimeoutSec = defaultRequestTimeoutSec
	}
	if c.Game.Store == "" {
		c.Game.Store = GameStoreRedis
	}
	if c.Game.MaxClaims <= 0 {
		c.Game.MaxClaims = defaultMaxClaims
	}
	if c.Game.AnonymousUsername == "" {
		c.Game.AnonymousUsername = defaultAnonymousUsername
	}
	if c.Kafka.ClaimTopic == "" {
		c.Kafka.ClaimTopic = defaultClaimTopic
	}
	if c.Kafka.PostTopic == "" {
		c.Kafka.PostTopic = defaultPostTopic
	}
	if c.AwsS3.ExportPrefix == "" {
		c.AwsS3.ExportPrefix = defaultExportPrefix
	}
}

// secrets are kept out of the yaml file and read from the environment
func (c *Configuration) applyEnvOverrides() {
	overrides := map[string]*string{
		"REDIS_PASSWORD":    &c.RedisCredential.Password,
		"POSTGRES_PASSWORD": &c.Postgres.Password,
		"SENTRY_DSN":        &c.SentryDSN,
		"LARK_WEBHOOK":      &c.LarkAlarmWebhook,
		"JWT_SECRET":        &c.Identity.JWTSecret,
		"INTERNAL_TOKEN":    &c.Server.InternalToken,
	}
	for env, target := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*target = v
		}
	}
}

func (c *Configuration) validate() error {
	switch c.Game.Store {
	case GameStoreRedis:
		if !c.RedisCredential.Enabled() {
			return fmt.Errorf("redis address required for game store %q", c.Game.Store)
		}
	case GameStoreMemory:
	default:
		return fmt.Errorf("unknown game store %q", c.Game.Store)
	}
	if c.Provision.NodeID < 0 || c.Provision.NodeID > 1023 {
		return fmt.Errorf("provision node id %v out of range", c.Provision.NodeID)
	}
	return nil
}

// Load decodes the yaml file at path, then applies env overrides and defaults.
func Load(path string) (*Configuration, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s does not exist", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	t := Configuration{}
	if err := yaml.Unmarshal(dat, &t); err != nil {
		return nil, fmt.Errorf("fail to decode config error: %w", err)
	}
	t.applyEnvOverrides()
	t.applyDefaults()
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

var Global *Configuration

// Read reads configuration information from yml.
func Read() {
	configFilePath := flag.String("config-path", "internal/config/config.yml", "The path to the configuration file")
	flag.Parse()
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, reading environment variables directly")
	}
	logrus.Infof("Loading configuration file from %s", *configFilePath)
	globalConfig, err := Load(*configFilePath)
	if err != nil {
		logrus.Fatal(err)
	}
	Global = globalConfig
}
