package configuration

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jjwprotozoa/dmoc-sub000/pkg/logging"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/manifestfile"
)

const (
	Production = "production"

	RLSModeDisabled = "disabled"
	RLSModeEnforce  = "enforce"
)

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the env files that exist, looked up in the working directory
// first and then in the nearest directory holding go.mod. It returns how many
// files were loaded.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	root := moduleRoot()
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existing = append(existing, file)
			continue
		}
		if root == "" || filepath.IsAbs(file) {
			continue
		}
		if candidate := filepath.Join(root, file); fs.FileExists(candidate) {
			existing = append(existing, candidate)
		}
	}

	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func moduleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"dmoc"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

// ImportOptions are the defaults for manifest import runs; CLI flags
// override them per run.
type ImportOptions struct {
	BatchSize    int           `env:"IMPORT_BATCH_SIZE" envDefault:"100"`
	BatchTimeout time.Duration `env:"IMPORT_BATCH_TIMEOUT" envDefault:"30s"`
	Workers      int           `env:"IMPORT_WORKERS" envDefault:"1"`
	Timezone     string        `env:"IMPORT_TIMEZONE" envDefault:"UTC"`
	Encoding     string        `env:"IMPORT_ENCODING" envDefault:"auto"`

	location *time.Location
}

func (o *ImportOptions) Validate() error {
	if o.BatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive, got %d", o.BatchSize)
	}
	if o.Workers < 1 {
		return fmt.Errorf("IMPORT_WORKERS must be at least 1, got %d", o.Workers)
	}
	if o.BatchTimeout < 0 {
		return fmt.Errorf("IMPORT_BATCH_TIMEOUT must not be negative, got %s", o.BatchTimeout)
	}
	if _, err := manifestfile.ParseEncoding(o.Encoding); err != nil {
		return fmt.Errorf("IMPORT_ENCODING: %w", err)
	}
	loc, err := time.LoadLocation(strings.TrimSpace(o.Timezone))
	if err != nil {
		return fmt.Errorf("IMPORT_TIMEZONE=%q: %w", o.Timezone, err)
	}
	o.location = loc
	return nil
}

// Location is the timezone export timestamps are written in.
func (o *ImportOptions) Location() *time.Location {
	if o.location == nil {
		return time.UTC
	}
	return o.location
}

type PrometheusOptions struct {
	PushgatewayURL string `env:"PROMETHEUS_PUSHGATEWAY_URL"`
	Job            string `env:"PROMETHEUS_JOB" envDefault:"manifest_import"`
}

type Configuration struct {
	Database   DatabaseOptions
	Import     ImportOptions
	Prometheus PrometheusOptions

	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	// Empty means console only.
	LogPath string `env:"LOG_PATH"`

	RLSEnforce string `env:"RLS_ENFORCE" envDefault:"disabled"`

	logFile io.Closer
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func Use() *Configuration {
	return singleton()
}

// Load builds a configuration outside the process-wide singleton.
func Load(envFiles []string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Import.Validate(); err != nil {
		return fmt.Errorf("import configuration error: %w", err)
	}
	if err := c.validateRLS(); err != nil {
		return err
	}

	if c.LogPath != "" {
		f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
		if err != nil {
			return err
		}
		c.logFile = f
		c.logger = logger
	} else {
		c.logger = logging.ConsoleLogger(c.LogrusLogLevel())
	}

	c.Database.Opts = c.Database.ConnectionString()
	return nil
}

func (c *Configuration) validateRLS() error {
	mode := strings.ToLower(strings.TrimSpace(c.RLSEnforce))
	if mode == "" {
		mode = RLSModeDisabled
	}
	switch mode {
	case RLSModeDisabled, RLSModeEnforce:
	default:
		return fmt.Errorf("invalid RLS_ENFORCE=%q (expected disabled|enforce)", c.RLSEnforce)
	}

	if mode == RLSModeEnforce && strings.EqualFold(strings.TrimSpace(c.Database.User), "postgres") {
		return fmt.Errorf("RLS_ENFORCE=enforce requires a non-superuser DB_USER (postgres will bypass RLS)")
	}

	c.RLSEnforce = mode
	return nil
}

// Unload closes the log file, if any.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
