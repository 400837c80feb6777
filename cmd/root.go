package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-quality"
)

// Config is the full configuration surface of the cli. Every field is
// optional; built-in defaults apply when a section is absent.
type Config struct {
	// Weights overrides the component weighting used by the aggregator.
	Weights map[string]float64 `mapstructure:"weights"`
	// CacheSize bounds the report cache. Zero keeps the default.
	CacheSize int `mapstructure:"cache-size"`
	// TimeoutSeconds bounds each evaluator run. Zero keeps the default.
	TimeoutSeconds int `mapstructure:"timeout-seconds"`
	// VerbsFile points to an extra action-verb list merged with the
	// built-in one.
	VerbsFile string `mapstructure:"verbs-file"`
	// Domain selects a domain-specific action-verb vocabulary.
	Domain string `mapstructure:"domain"`
	// Tuning holds per-evaluator overrides keyed by evaluator name.
	Tuning map[string]map[string]any `mapstructure:"tuning"`

	Grammar *GrammarConfig `mapstructure:"grammar"`
}

type GrammarConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-quality is a cli for scoring the writing quality of a resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("grammar.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-quality.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the score command.
	if scoreCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The cli works with built-in defaults; only an explicitly
		// requested or a malformed config file is fatal.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}
