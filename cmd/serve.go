package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-optimizer/internal/logger"
	"github.com/spigell/resume-optimizer/internal/secrets"
	"github.com/spigell/resume-optimizer/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web form and the JSON API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "address to bind (default is SERVER_NAME or 0.0.0.0)")
	serveCmd.Flags().Int("port", 0, "port to listen on (default is SERVER_PORT or 7860)")
	serveCmd.Flags().Bool("parallel", false, "run the agents of each request concurrently")

	viper.BindPFlag("server.name", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func serve(cmd *cobra.Command) {
	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-optimizer server", zap.String("version", version))

	if flagBool(cmd, "parallel") {
		config.Server.Parallel = true
	}

	if err := checkProvider(config.AI); err != nil {
		logger.Fatal("checking ai provider", zap.Error(err))
	}

	// Without a server key every request has to bring its own.
	apiKey, err := resolveAPIKey(config.AI.Gemini)
	if err != nil {
		if !errors.Is(err, secrets.ErrNotConfigured) {
			logger.Fatal("loading gemini api key", zap.Error(err), zap.String("hint", apiKeyHint))
		}
		logger.Info("no server-side gemini api key, requests must provide one")
	}

	srv, err := web.New(*config.Server, web.Deps{
		APIKey:       apiKey,
		NewGenerator: generatorFactory(config.AI.Gemini, logger),
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("creating server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Listen(ctx); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
