package app

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/kinecosystem/agora-crowdfund/env"
	"github.com/kinecosystem/agora-crowdfund/metrics"
)

// Load reads the configuration at path, if it exists, and overlays any set
// environment variables on top of it.
func Load(path string) (Config, error) {
	v := viper.New()

	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_type", "LOG_TYPE")
	_ = v.BindEnv("solana_cluster", "SOLANA_CLUSTER")
	_ = v.BindEnv("rpc_endpoint", "RPC_ENDPOINT")
	_ = v.BindEnv("wallet_url", "WALLET_URL")
	_ = v.BindEnv("keypair", "KEYPAIR")
	_ = v.BindEnv("program_id", "PROGRAM_ID")
	_ = v.BindEnv("commitment", "COMMITMENT")
	_ = v.BindEnv("timeout", "TIMEOUT")

	config := defaultConfig

	cluster, err := env.FromEnvVariable()
	if err != nil {
		return config, err
	}
	config.Cluster = string(cluster)

	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set. That is,
	// if we explicitly set a config file, and it does not exist, viper will not
	// return a ConfigFileNotFoundError, so we do it ourselves.
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
		} else if !os.IsNotExist(err) {
			return config, errors.Wrap(err, "failed to check if config exists")
		}
	}

	err = v.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return config, errors.Wrap(err, "failed to load config")
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := config.validate(); err != nil {
		return config, err
	}

	return config, nil
}

type prometheusLogger struct {
	warnCounter  prometheus.Counter
	errorCounter prometheus.Counter
}

func newPrometheusLogger() *prometheusLogger {
	return &prometheusLogger{
		warnCounter: metrics.RegisterCounter(prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "logging_warns",
			Namespace: "crowdfund",
		})),
		errorCounter: metrics.RegisterCounter(prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "logging_errors",
			Namespace: "crowdfund",
		})),
	}
}

func (p *prometheusLogger) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.WarnLevel,
		logrus.ErrorLevel,
	}
}

func (p *prometheusLogger) Fire(e *logrus.Entry) error {
	switch e.Level {
	case logrus.WarnLevel:
		p.warnCounter.Inc()
	case logrus.ErrorLevel:
		p.errorCounter.Inc()
	}

	return nil
}

// ConfigureLogger sets up the standard logger according to config, writing
// to out. Hooks from earlier calls are replaced.
func ConfigureLogger(config Config, out io.Writer) {
	switch strings.ToLower(config.LogType) {
	case "", "human":
		logrus.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{})
		logrus.StandardLogger().WithField("log_type", config.LogType).Warn("unknown logger type, ignoring")
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(out)

	hooks := make(logrus.LevelHooks)
	hooks.Add(newPrometheusLogger())
	logrus.StandardLogger().ReplaceHooks(hooks)
}
