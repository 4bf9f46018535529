package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrMissingKey reports a required setting that is absent from both the
// config file and the environment.
var ErrMissingKey = eris.New("missing required config key")

// Config holds the full application configuration.
type Config struct {
	APIToken            string `yaml:"api_token" mapstructure:"api_token"`
	NotionVersion       string `yaml:"notion_version" mapstructure:"notion_version"`
	RecipesDB           string `yaml:"recipes_db_id" mapstructure:"recipes_db_id"`
	MasterIngredientsDB string `yaml:"master_ingredients_db_id" mapstructure:"master_ingredients_db_id"`

	Client ClientConfig `yaml:"client" mapstructure:"client"`
	Schema SchemaConfig `yaml:"schema" mapstructure:"schema"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Ledger LedgerConfig `yaml:"ledger" mapstructure:"ledger"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ClientConfig tunes the HTTP transport used for Notion calls.
type ClientConfig struct {
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Retries     int     `yaml:"retries" mapstructure:"retries"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SchemaConfig names the Notion properties read and written by the tool.
type SchemaConfig struct {
	RecipeName     string `yaml:"recipe_name" mapstructure:"recipe_name"`
	RecipeDate     string `yaml:"recipe_date" mapstructure:"recipe_date"`
	RecipePrice    string `yaml:"recipe_price" mapstructure:"recipe_price"`
	RowPrice       string `yaml:"row_price" mapstructure:"row_price"`
	RowMasterName  string `yaml:"row_master_name" mapstructure:"row_master_name"`
	RowAmount      string `yaml:"row_amount" mapstructure:"row_amount"`
	RowUnit        string `yaml:"row_unit" mapstructure:"row_unit"`
	MasterName     string `yaml:"master_name" mapstructure:"master_name"`
	MasterCategory string `yaml:"master_category" mapstructure:"master_category"`
}

// ExportConfig configures shopping list output.
type ExportConfig struct {
	Prefix       string `yaml:"prefix" mapstructure:"prefix"`
	Dir          string `yaml:"dir" mapstructure:"dir"`
	Format       string `yaml:"format" mapstructure:"format"`
	Unclassified string `yaml:"unclassified" mapstructure:"unclassified"`
}

// LedgerConfig configures the local run ledger. An empty path disables it.
type LedgerConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// requiredKeys are checked by Validate in this order.
var requiredKeys = []string{"api_token", "notion_version", "recipes_db_id", "master_ingredients_db_id"}

// Load reads configuration from file and environment. When path is empty,
// config.yml or config.yaml is looked up in the working directory; a missing
// file leaves only defaults and environment values.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("KITCHEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range requiredKeys {
		_ = v.BindEnv(key)
	}

	// Defaults
	v.SetDefault("client.rate_limit", 3.0)
	v.SetDefault("client.retries", 0)
	v.SetDefault("client.timeout_secs", 0)
	v.SetDefault("schema.recipe_name", "Jméno")
	v.SetDefault("schema.recipe_date", "Datum")
	v.SetDefault("schema.recipe_price", "Cena")
	v.SetDefault("schema.row_price", "Cena")
	v.SetDefault("schema.row_master_name", "Master Name")
	v.SetDefault("schema.row_amount", "Počet")
	v.SetDefault("schema.row_unit", "Jednotka")
	v.SetDefault("schema.master_name", "Jméno")
	v.SetDefault("schema.master_category", "Typ")
	v.SetDefault("export.prefix", "nakup")
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.unclassified", "Nezařazeno")
	v.SetDefault("ledger.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		// An explicit --config path must exist.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate reports the first required key that is unset.
func (c *Config) Validate() error {
	values := map[string]string{
		"api_token":                c.APIToken,
		"notion_version":           c.NotionVersion,
		"recipes_db_id":            c.RecipesDB,
		"master_ingredients_db_id": c.MasterIngredientsDB,
	}
	for _, key := range requiredKeys {
		if strings.TrimSpace(values[key]) == "" {
			return eris.Wrapf(ErrMissingKey, "%s (set it in config.yml or KITCHEN_%s)", key, strings.ToUpper(key))
		}
	}
	return nil
}

// Redacted returns a copy safe to print, with the API token masked.
func (c Config) Redacted() Config {
	if c.APIToken != "" {
		keep := min(4, len(c.APIToken))
		c.APIToken = c.APIToken[:keep] + strings.Repeat("*", 8)
	}
	return c
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.DisableStacktrace = true
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
