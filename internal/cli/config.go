package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/quizgame/internal/factory"
	"github.com/mcoot/quizgame/internal/model"
	redisstorage "github.com/mcoot/quizgame/internal/storage/redis"
)

// EnvPrefix prefixes the environment variable of every persistent flag
const EnvPrefix = "QUIZGAME"

// Config holds CLI configuration
type Config struct {
	ServerURL  string
	WSPath     string
	Profile    string
	Storage    string
	StorageDir string
	RedisURL   string
	Output     string
	LogLevel   string
	Verbose    bool
	AssumeYes  bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		WSPath:   "/ws",
		Profile:  string(model.DefaultProfile),
		Storage:  factory.StorageTypeFile,
		RedisURL: redisstorage.DefaultConfig().URL,
		Output:   "text",
		LogLevel: "warn",
	}
}

func (c *Config) validate() error {
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format %q: must be text or json", c.Output)
	}
	switch c.Storage {
	case factory.StorageTypeMemory, factory.StorageTypeFile, factory.StorageTypeRedis:
	default:
		return fmt.Errorf("invalid storage %q: must be memory, file or redis", c.Storage)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// factoryConfig maps the CLI settings onto the application factory
func (c *Config) factoryConfig() factory.Config {
	fc := factory.Config{
		ServerURL:   c.ServerURL,
		WSPath:      c.WSPath,
		Profile:     model.ProfileName(c.Profile),
		StorageType: c.Storage,
		StorageDir:  c.StorageDir,
	}
	if c.Storage == factory.StorageTypeRedis {
		rc := redisstorage.DefaultConfig()
		rc.URL = c.RedisURL
		fc.RedisConfig = &rc
	}
	return fc
}

// newLogger writes JSON logs to w. Verbose lowers the level to debug.
func (c *Config) newLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// bindEnv lets QUIZGAME_<FLAG> supply any flag not set on the command line
func bindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
