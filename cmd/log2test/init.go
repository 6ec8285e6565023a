package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/log2test/internal/config"
)

//go:embed templates/log2test.yaml templates/log2test.toml
var configTemplates embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter job configuration file",
		Long: `Init writes a commented job configuration file.

Without -o the file is .log2test.yaml in the current directory, which
'log2test scan' picks up automatically. The format follows the file
extension (.toml for TOML, YAML otherwise) unless --format is given.

Examples:
  # Create .log2test.yaml in the current directory
  log2test init

  # Fill in hosts and the log file right away
  log2test init --host www.example.com --host api.example.com \
    --log-file /var/log/apache2/other_vhosts_access.log

  # Write a TOML job file
  log2test init -o nightly.toml

  # Force overwrite existing file
  log2test init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().String("format", "",
		"Configuration format: yaml or toml (default: from the file extension)")
	cmd.Flags().StringArray("host", nil,
		"Virtual host to collect paths for (repeatable)")
	cmd.Flags().String("log-file", "",
		"Access log the job reads")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	hosts, err := cmd.Flags().GetStringArray("host")
	if err != nil {
		return err
	}
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return err
	}

	format := config.FormatFromPath(outputPath)
	switch strings.ToLower(formatName) {
	case "":
	case "yaml", "yml":
		format = config.FormatYAML
	case "toml":
		format = config.FormatTOML
	default:
		return fmt.Errorf("unknown configuration format %q (use yaml or toml)", formatName)
	}
	if format == config.FormatTOML && !cmd.Flags().Changed("output") {
		outputPath = strings.TrimSuffix(config.DefaultConfigFile, filepath.Ext(config.DefaultConfigFile)) + ".toml"
	}
	if format != config.FormatFromPath(outputPath) {
		return fmt.Errorf("%s does not look like a %s file; use a matching extension", outputPath, format)
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	templateName := "templates/log2test.yaml"
	if format == config.FormatTOML {
		templateName = "templates/log2test.toml"
	}
	content, err := configTemplates.ReadFile(templateName)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	if len(hosts) > 0 || logFile != "" {
		if err := fillTemplate(outputPath, hosts, logFile); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to set:")
	fmt.Fprintln(out, "  - the virtual hosts to collect paths for")
	fmt.Fprintln(out, "  - the window size (numberOfLine)")
	fmt.Fprintln(out, "  - the access log and its format")
	return nil
}

// fillTemplate writes the values given on the command line into the
// freshly written template.
func fillTemplate(path string, hosts []string, logFile string) error {
	store, err := config.OpenFileStore(path)
	if err != nil {
		return err
	}
	if len(hosts) > 0 {
		if err := store.Set(config.KeyHosts, hosts); err != nil {
			return err
		}
	}
	if logFile != "" {
		abs, err := config.ExpandPath(logFile)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		if err := store.Set(config.KeyLogFile, abs); err != nil {
			return err
		}
	}
	return nil
}
