package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/sheetmetrics/internal/aggregate"
	"github.com/sells-group/sheetmetrics/internal/ingest"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig          `yaml:"store" mapstructure:"store"`
	Log        LogConfig            `yaml:"log" mapstructure:"log"`
	Server     ServerConfig         `yaml:"server" mapstructure:"server"`
	Ingest     IngestConfig         `yaml:"ingest" mapstructure:"ingest"`
	Thresholds aggregate.Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
	Scoring    aggregate.Scoring    `yaml:"scoring" mapstructure:"scoring"`
	Report     ReportConfig         `yaml:"report" mapstructure:"report"`
}

// StoreConfig configures the local state database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the dashboard API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	UploadRate     float64  `yaml:"upload_rate" mapstructure:"upload_rate"`
	UploadBurst    int      `yaml:"upload_burst" mapstructure:"upload_burst"`
}

// IngestConfig configures each upload domain.
type IngestConfig struct {
	Budget     DomainConfig `yaml:"budget" mapstructure:"budget"`
	Instrument DomainConfig `yaml:"instrument" mapstructure:"instrument"`
}

// DomainConfig configures ingestion of one domain.
type DomainConfig struct {
	Policy    string   `yaml:"policy" mapstructure:"policy"`
	Sheets    []string `yaml:"sheets" mapstructure:"sheets"`
	AliasFile string   `yaml:"alias_file" mapstructure:"alias_file"`
	Date1904  bool     `yaml:"date1904" mapstructure:"date1904"`
}

// ReportConfig configures derived views.
type ReportConfig struct {
	TopEquipmentTypes int `yaml:"top_equipment_types" mapstructure:"top_equipment_types"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("sheetmetrics")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SHEETMETRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "sheetmetrics.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.max_upload_bytes", 32<<20)
	v.SetDefault("server.upload_rate", 1.0)
	v.SetDefault("server.upload_burst", 5)
	v.SetDefault("ingest.budget.policy", string(ingest.PolicySkipSection))
	v.SetDefault("ingest.budget.sheets", []string{})
	v.SetDefault("ingest.budget.alias_file", "")
	v.SetDefault("ingest.budget.date1904", false)
	v.SetDefault("ingest.instrument.policy", string(ingest.PolicyAbort))
	v.SetDefault("ingest.instrument.sheets", ingest.DefaultAreas)
	v.SetDefault("ingest.instrument.alias_file", "")
	v.SetDefault("ingest.instrument.date1904", false)
	v.SetDefault("thresholds.healthy", aggregate.DefaultThresholds.Healthy)
	v.SetDefault("thresholds.caution", aggregate.DefaultThresholds.Caution)
	v.SetDefault("scoring.healthy_points", aggregate.DefaultScoring.HealthyPoints)
	v.SetDefault("scoring.caution_points", aggregate.DefaultScoring.CautionPoints)
	v.SetDefault("scoring.warning_points", aggregate.DefaultScoring.WarningPoints)
	v.SetDefault("scoring.excellent", aggregate.DefaultScoring.Excellent)
	v.SetDefault("scoring.good", aggregate.DefaultScoring.Good)
	v.SetDefault("scoring.fair", aggregate.DefaultScoring.Fair)
	v.SetDefault("report.top_equipment_types", 6)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be in [1,65535], got %d", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, "server.max_upload_bytes must be > 0")
	}
	if c.Server.UploadRate <= 0 {
		errs = append(errs, "server.upload_rate must be > 0")
	}
	if c.Server.UploadBurst < 1 {
		errs = append(errs, "server.upload_burst must be >= 1")
	}
	for name, d := range map[string]DomainConfig{"budget": c.Ingest.Budget, "instrument": c.Ingest.Instrument} {
		if _, err := ingest.ParsePolicy(d.Policy); err != nil {
			errs = append(errs, fmt.Sprintf("ingest.%s.policy %q must be abort or skip_section", name, d.Policy))
		}
	}
	if c.Thresholds.Caution > 1000 {
		errs = append(errs, "thresholds.caution must be <= 1000")
	}
	if err := c.Thresholds.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Scoring.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Report.TopEquipmentTypes < 0 {
		errs = append(errs, "report.top_equipment_types must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IngestOptions converts the ingest sections into ingestor options.
func (c *Config) IngestOptions() ingest.Options {
	opts := ingest.DefaultOptions()
	opts.Thresholds = c.Thresholds
	opts.Budget = domainOptions(c.Ingest.Budget, opts.Budget)
	opts.Instrument = domainOptions(c.Ingest.Instrument, opts.Instrument)
	return opts
}

func domainOptions(d DomainConfig, def ingest.DomainOptions) ingest.DomainOptions {
	out := ingest.DomainOptions{
		Policy:    ingest.Policy(d.Policy),
		Sections:  d.Sheets,
		AliasFile: d.AliasFile,
		Date1904:  d.Date1904,
	}
	if out.Policy == "" {
		out.Policy = def.Policy
	}
	if len(out.Sections) == 0 {
		out.Sections = def.Sections
	}
	return out
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
