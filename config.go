package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/chatbot"
	"github.com/korylprince/jobmatch-server/storage"
	"go.uber.org/zap"
)

//Config represents options given in the environment
type Config struct {
	SessionDuration int //in minutes; default: 1440

	SQLDriver string //mysql or postgres; required
	SQLDSN    string //required
	Migrate   bool   //create missing tables at startup

	ListenAddr string //addr format used for net.Dial; required
	Prefix     string //url prefix to mount api to without trailing slash

	AIEndpoint string //default: chatbot.DefaultEndpoint
	AIModel    string //default: chatbot.DefaultModel
	AIKey      string

	JSearchEndpoint string
	JSearchKey      string
	JobCacheBytes   int           //default: 8 MiB
	JobCacheTTL     time.Duration //default: 15m

	FootballEndpoint string
	FootballKey      string

	R2AccountID string
	R2AccessKey string
	R2SecretKey string
	R2Bucket    string

	RabbitMQURL string

	LogLevel string //default: info
}

//R2 returns the resume archive configuration
func (c *Config) R2() storage.R2Config {
	return storage.R2Config{AccountID: c.R2AccountID, AccessKey: c.R2AccessKey, SecretKey: c.R2SecretKey, Bucket: c.R2Bucket}
}

var config = &Config{}

var logger *zap.Logger

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("could not parse log level %q: %w", level, err)
	}
	conf := zap.NewProductionConfig()
	conf.Level = lvl
	return conf.Build()
}

func checkEmpty(val, name string) {
	if val == "" {
		logger.Fatal(fmt.Sprintf("JOBMATCH_%s must be configured", name))
	}
}

func init() {
	var err error
	if logger, err = newLogger("info"); err != nil {
		panic(err)
	}

	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatal("Error reading .env file", zap.Error(err))
	}

	if err = envconfig.Process("JOBMATCH", config); err != nil {
		logger.Fatal("Error reading configuration from environment", zap.Error(err))
	}

	if config.LogLevel != "" {
		l, err := newLogger(config.LogLevel)
		if err != nil {
			logger.Fatal("Error configuring logger", zap.Error(err))
		}
		logger = l
	}

	if config.SessionDuration == 0 {
		config.SessionDuration = 1440
	}
	if config.AIEndpoint == "" {
		config.AIEndpoint = chatbot.DefaultEndpoint
	}
	if config.AIModel == "" {
		config.AIModel = chatbot.DefaultModel
	}
	if config.JobCacheBytes == 0 {
		config.JobCacheBytes = 8 * 1024 * 1024
	}
	if config.JobCacheTTL == 0 {
		config.JobCacheTTL = 15 * time.Minute
	}

	checkEmpty(config.SQLDriver, "SQLDRIVER")
	checkEmpty(config.SQLDSN, "SQLDSN")

	if _, err = api.ParseDialect(config.SQLDriver); err != nil {
		logger.Fatal("Invalid JOBMATCH_SQLDRIVER", zap.Error(err))
	}

	if config.SQLDriver == "mysql" && !strings.Contains(config.SQLDSN, "parseTime=true") {
		logger.Fatal("mysql DSN must contain \"parseTime=true\"")
	}

	checkEmpty(config.ListenAddr, "LISTENADDR")
}
