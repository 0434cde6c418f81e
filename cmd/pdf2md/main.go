// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf2md CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2md/internal/pipeline"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	exitUsage   = 1
	exitFailure = 2
)

// rootCmd is the pdf2md command. It takes exactly two positional arguments.
var rootCmd = &cobra.Command{
	Use:   "pdf2md <input_pdf_path> <output_directory>",
	Short: "Convert a PDF into Markdown plus extracted images",
	Long: `pdf2md loads its model set once, converts the input PDF, and writes
<output_directory>/<name>/<name>.md together with the page images and a
<name>_meta.json metadata file. The saved folder is printed on success.

Backends: tabula (in-process, default) and markitdown (container image run
through docker or podman). OCR for scanned PDFs needs a build with -tags ocr.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if err := pipeline.ValidateArgs(args); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), pipeline.Usage)
			return err
		}
		return nil
	},
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("pdf2md {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintln(cmd.OutOrStdout(), pipeline.Usage)
		return fmt.Errorf("%w: %v", pipeline.ErrUsage, err)
	})

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdf2md.yaml or ~/.config/pdf2md/config.yaml)")
	registerFlags(rootCmd)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdf2md")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdf2md"))
		}
	}

	viper.SetEnvPrefix("PDF2MD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	}
}

// execute runs the CLI with args and returns the process exit status:
// 0 on success, 1 for usage errors, 2 when a conversion stage fails.
func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pipeline.ErrUsage):
		// Flag parse errors carry detail worth showing; a bare count
		// mismatch is covered by the usage line.
		if err != pipeline.ErrUsage {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitUsage
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
