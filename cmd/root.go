package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-optimizer/internal/ai/gemini"
	"github.com/spigell/resume-optimizer/internal/web"
)

const (
	app = "resume-optimizer"
)

type Config struct {
	AI        *AIConfig   `mapstructure:"ai"`
	Server    *web.Config `mapstructure:"server"`
	OutputDir string      `mapstructure:"output-dir"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Parallel bool          `mapstructure:"parallel"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string  `mapstructure:"api-key"`
	APIKeyFile   string  `mapstructure:"api-key-file"`
	Model        string  `mapstructure:"model"`
	Temperature  float32 `mapstructure:"temperature"`
	MaxLogLength int     `mapstructure:"max-log-length"`
}

var envBindings = map[string]string{
	"ai.gemini.api-key":      "GEMINI_API_KEY",
	"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	"ai.gemini.model":        "GEMINI_MODEL",
	"server.name":            "SERVER_NAME",
	"server.port":            "SERVER_PORT",
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-optimizer tailors a resume to a job description with a set of Gemini agents",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-optimizer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", gemini.DefaultModel)
	viper.SetDefault("server.name", web.DefaultHost)
	viper.SetDefault("server.port", web.DefaultPort)
	viper.SetDefault("server.request-timeout", web.DefaultRequestTimeout.String())
	viper.SetDefault("server.max-reports", web.DefaultMaxReports)
	viper.SetDefault("server.max-upload-size", web.DefaultMaxUploadSize)
	viper.SetDefault("output-dir", ".")
}

func initConfig() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional, but an explicit or broken one must parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
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
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Server == nil {
		config.Server = &web.Config{}
	}
	if config.Server.RequestTimeout <= 0 {
		config.Server.RequestTimeout = web.DefaultRequestTimeout
	}
	config.Server.Parallel = config.AI.Parallel

	return config, nil
}

// requestTimeout bounds one CLI optimization run the same way the server bounds a request.
func requestTimeout(config *Config) time.Duration {
	if config == nil || config.Server == nil || config.Server.RequestTimeout <= 0 {
		return web.DefaultRequestTimeout
	}
	return config.Server.RequestTimeout
}
