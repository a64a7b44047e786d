package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine       string // postgres | pgx | sqlite
		Host         string
		Port         int
		User         string
		Password     string
		Name         string // file path or DSN when Engine is sqlite
		DisableTLS   bool
		MaxOpenConns int
	}

	ServerConfig struct {
		Address         string
		Host            string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	EmailConfig struct {
		DefaultFrom    string
		SendgridApiKey string
	}

	OccupancyConfig struct {
		CapacityPolicy string // fail_open | fail_closed
	}

	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		TokenIssuer  string
		RollbarToken string

		Database  DatabaseConfig
		Server    ServerConfig
		Email     EmailConfig
		Occupancy OccupancyConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// From parses DefaultFrom, falling back to a bare address when it is not RFC 5322 compliant.
func (c EmailConfig) From() mail.Address {
	if addr, err := mail.ParseAddress(c.DefaultFrom); err == nil {
		return *addr
	}
	return mail.Address{Address: c.DefaultFrom}
}

// LoadConfig reads the configuration from defaults, the optional config/.env.<env> file
// and the environment. Variables are prefixed with the environment name,
// e.g. PROD_DATABASE_HOST or DEV_OCCUPANCY_CAPACITYPOLICY.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Hostel")
	v.SetDefault("secretKey", "k2m+hq8t)v0!x9#c3z&_n4w$e7r@b1y5u(j6o%a^s-p8d")
	v.SetDefault("tokenIssuer", "")
	v.SetDefault("rollbar.token", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "hostel")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "hostel")
	v.SetDefault("database.disableTLS", false)
	v.SetDefault("database.maxOpenConns", 20)

	v.SetDefault("email.defaultFrom", "Hostel <noreply@localhost>")
	v.SetDefault("email.sendgridApiKey", "")

	v.SetDefault("occupancy.capacityPolicy", "fail_open")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if root, err := Getwd(); err == nil {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
		}
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		TokenIssuer:  v.GetString("tokenIssuer"),
		RollbarToken: v.GetString("rollbar.token"),
		Database: DatabaseConfig{
			Engine:       v.GetString("database.engine"),
			Host:         v.GetString("database.host"),
			Port:         v.GetInt("database.port"),
			User:         v.GetString("database.user"),
			Password:     v.GetString("database.password"),
			Name:         v.GetString("database.name"),
			DisableTLS:   v.GetBool("database.disableTLS"),
			MaxOpenConns: v.GetInt("database.maxOpenConns"),
		},
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			Host:            v.GetString("server.host"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Email: EmailConfig{
			DefaultFrom:    v.GetString("email.defaultFrom"),
			SendgridApiKey: v.GetString("email.sendgridApiKey"),
		},
		Occupancy: OccupancyConfig{
			CapacityPolicy: v.GetString("occupancy.capacityPolicy"),
		},
	}
	if conf.TokenIssuer == "" {
		conf.TokenIssuer = conf.AppName
	}
	return conf, nil
}
