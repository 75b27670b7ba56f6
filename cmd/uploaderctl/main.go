package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/bloggerimageuploader/internal/config"
	"github.com/Lllllllleong/bloggerimageuploader/internal/models"
	"github.com/Lllllllleong/bloggerimageuploader/internal/services"
)

var (
	password string
	verbose  bool
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "uploaderctl",
	Short: "Run the image uploader pipeline from the command line",
	Long: `uploaderctl runs the same pipeline as the HTTP service without a server.
Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		cfg = config.Load()
	},
}

var processCmd = &cobra.Command{
	Use:   "process <postUrl>",
	Short: "Upload the first image of a WordPress post",
	Long: `Fetch a WordPress post, pick its first image and upload it to the
configured storage backend. The result is printed as JSON.

Examples:
  uploaderctl process https://blog.example.com/2024/01/hello-world/
  uploaderctl process https://blog.example.com/p/ --password s3cret`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Find or create the destination folder and print its id",
	Args:  cobra.NoArgs,
	RunE:  runFolder,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")
	processCmd.Flags().StringVar(&password, "password", "", "API password (defaults to API_PASSWORD)")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(folderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
	processor, err := services.NewProcessor(cfg)
	if err != nil {
		return err
	}

	if password == "" {
		password = cfg.APIPassword
	}
	resp, err := processor.Process(cmd.Context(), &models.ProcessRequest{
		PostURL:  args[0],
		Password: password,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runFolder(cmd *cobra.Command, args []string) error {
	processor, err := services.NewProcessor(cfg)
	if err != nil {
		return err
	}

	folderID, err := processor.Uploader().EnsureFolder(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), folderID)
	return nil
}
