package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codedrip/config"
	"codedrip/logger"
	"codedrip/models"
	"codedrip/service"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "codedrip",
	Short: "GitHub repository health analyzer",
	Long: `codedrip analyzes public GitHub repositories, scores their health and activity
trends, summarizes them with a generative-text model and answers questions about them.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <git-url>",
	Short: "Analyze one repository and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		save, _ := cmd.Flags().GetBool("save")
		return analyze(cmd.Context(), args[0], name, save)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file to load (default .env)")

	analyzeCmd.Flags().String("name", "", "display name (defaults to the repository name)")
	analyzeCmd.Flags().Bool("save", false, "store the analysis")

	rootCmd.AddCommand(serveCmd, analyzeCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and initializes the global logger.
func setup() (*config.Config, error) {
	cfg := config.NewConfig()
	if err := cfg.Load(configFile); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ser, err := service.NewService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := ser.Close(); err != nil {
			logger.Error("Error during service shutdown", zap.Error(err))
		}
	}()

	return ser.Start()
}

func analyze(ctx context.Context, gitURL, name string, save bool) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	var result *models.RepoAnalysis
	if save {
		ser, err := service.NewService(ctx, cfg)
		if err != nil {
			return err
		}
		defer ser.Close()

		result, err = ser.Analyzer().Analyze(ctx, name, gitURL)
		if err != nil {
			return err
		}
	} else {
		analyzer, err := service.NewOfflineAnalyzer(ctx, cfg)
		if err != nil {
			return err
		}

		result, err = analyzer.Build(ctx, name, gitURL)
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
