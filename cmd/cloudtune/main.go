// Package main provides the cloudtune CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"cloudtune/internal/auth"
	"cloudtune/internal/core"
	httpserver "cloudtune/internal/http"
	"cloudtune/internal/ncm"
	"cloudtune/internal/provider"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cloudtune",
	Short: "cloudtune - cloud music provider bridge",
	Long: `cloudtune turns a third-party cloud-music REST API into a native music source
for a playback host: search, catalog browsing and audio-stream resolution with
quality fallback are exposed over a small HTTP bridge.`,
	RunE: runServe,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in by scanning a QR code and print the session cookie",
	RunE:  runLogin,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("api-url", "", "base URL of the cloud-music API service")
	rootCmd.PersistentFlags().String("cookie", "", "session cookie obtained via login")
	rootCmd.PersistentFlags().String("quality", "exhigh", "target stream quality level")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "HTTP bridge host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP bridge port")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(loginCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("CLOUDTUNE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.API.BaseURL = viper.GetString("api-url")
	cfg.API.Cookie = viper.GetString("cookie")

	if quality := viper.GetString("quality"); quality != "" {
		cfg.Stream.Quality = quality
	}
	if sources := viper.GetStringSlice("rescue-sources"); len(sources) > 0 {
		cfg.Stream.RescueSources = sources
	}

	if host := viper.GetString("server-host"); host != "" {
		cfg.Server.Host = host
	}
	if port := viper.GetInt("server-port"); port != 0 {
		cfg.Server.Port = port
	}

	if level := viper.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func validateConfig() error {
	if config.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required (--api-url or CLOUDTUNE_API_URL)")
	}
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info("Starting cloudtune",
		zap.String("api_url", config.API.BaseURL),
		zap.String("quality", config.Stream.Quality),
		zap.Bool("logged_in", config.API.Cookie != ""))

	client := ncm.NewClient(&config.API, logger.Named("ncm"))
	source := provider.New("cloudtune", &config.Stream, client, logger.Named("provider"))
	server := httpserver.NewServer(&config.Server, source, logger.Named("http"))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gCtx)
	})

	logger.Info("cloudtune started",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("cloudtune stopped with error", zap.Error(err))
		return err
	}

	logger.Info("cloudtune stopped gracefully")
	return nil
}

func runLogin(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	client := ncm.NewClient(&config.API, logger.Named("ncm"))
	flow := auth.NewFlow(client, config.Login.PollInterval, config.Login.MaxAttempts, logger.Named("auth"))
	flow.OnQRCode = func(pageURL string) {
		fmt.Printf("Open this page and scan the QR code with the music app:\n\n  %s\n\n", pageURL)
	}

	result := flow.Login(ctx)
	if result.State != auth.StateSucceeded {
		return fmt.Errorf("login did not complete: %s", result.State)
	}

	fmt.Println("Login succeeded. Store this cookie in your config (CLOUDTUNE_COOKIE):")
	fmt.Println(result.Cookie)
	return nil
}
