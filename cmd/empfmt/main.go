// Package main provides the empfmt command-line tool for formatting employee JSON files.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"empfmt/internal/batch"
	"empfmt/internal/config"
	"empfmt/internal/logger"
	"empfmt/internal/metrics"
	"empfmt/internal/report"
)

const (
	promptMessage     = "Please enter the path of the file or the folder containing the files: "
	defaultConfigPath = "configs/empfmt.yaml"
)

// errExit signals a non-zero exit after the message has already been shown.
var errExit = errors.New("exit")

type options struct {
	configPath  string
	logLevel    string
	metricsFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errExit) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}

		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "empfmt [path]",
		Short: "Validate, format and enrich employee JSON files",
		Long: `empfmt reads employee records from a JSON file, or from every .json file
below a folder, validates phone numbers and zip codes, normalizes names and
addresses, derives the company email and salary, and writes the result next to
each input as <name>_formatted.json.

Run without a path to be prompted for one.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	root.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")

	root.AddCommand(newConfigCmd(opts))

	return root
}

func newConfigCmd(opts *options) *cobra.Command {
	var writePath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			if writePath != "" {
				if err := cfg.SaveConfig(writePath); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", writePath)

				return nil
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringVarP(&writePath, "write", "w", "", "Write the effective configuration to this file instead of stdout")

	return cmd
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()

	configPath := opts.configPath
	if configPath == "" {
		// Try default location
		if _, statErr := os.Stat(defaultConfigPath); statErr == nil {
			configPath = defaultConfigPath
		}
	}

	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	if opts.metricsFile != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Textfile = opts.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	log := logger.NewLogger(cmd.ErrOrStderr(), "info")

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log.SetLevel(cfg.Logging.Level)
	log.Debug("configuration loaded", "config", cfg.String())

	out := cmd.OutOrStdout()

	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		path, err = prompt(cmd.InOrStdin(), out, promptMessage)
		if err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	runner := batch.NewRunner(cfg, log, metrics.NewMetrics(reg))

	sum, runErr := runner.Run(cmd.Context(), path)

	switch {
	case errors.Is(runErr, batch.ErrNotFound):
		fmt.Fprintf(out, "%s does not exist.\n", path)

		return nil
	case errors.Is(runErr, batch.ErrAlreadyFormatted):
		fmt.Fprintln(out, "The file provided is already processed.")

		return nil
	case errors.Is(runErr, batch.ErrNoValidFiles):
		fmt.Fprintln(out, "There are no valid files to process in the folder provided.")

		return nil
	case runErr != nil && !errors.Is(runErr, batch.ErrFilesFailed):
		return runErr
	}

	if err := report.WriteSummary(out, sum); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		if err := metrics.WriteTextfile(reg, cfg.Metrics.Textfile); err != nil {
			log.Error("Failed to export metrics", logger.Err(err))
		}
	}

	if runErr != nil {
		log.Error("Run finished with failures", logger.Err(runErr))

		return errExit
	}

	return nil
}

// prompt shows msg and reads one line from in, without its line ending.
func prompt(in io.Reader, out io.Writer, msg string) (string, error) {
	if _, err := io.WriteString(out, msg); err != nil {
		return "", err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read path: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
