package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/CLangCodes/Excel-Helper/internal/excel"
	"github.com/CLangCodes/Excel-Helper/internal/server"
	"github.com/CLangCodes/Excel-Helper/internal/tools"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	backend     string
	textStorage string
	config      tools.EnvConfig
	logger      *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "excel-helper",
		Short:         "Read and write cells of .xlsx files, or serve those operations over MCP",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "Workbook backend: auto, openxml, excelize or ole [env: EXCEL_HELPER_BACKEND]")
	rootCmd.PersistentFlags().StringVar(&opts.textStorage, "text-storage", "", "How the openxml backend stores text: shared or inline [env: EXCEL_HELPER_TEXT_STORAGE]")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newGetCmd(opts),
		newSetCmd(opts),
		newCreateCmd(opts),
		newDescribeCmd(opts),
		newListCmd(opts),
	)
	return rootCmd
}

// load reads the environment, lets flags override it and sets up logging on
// stderr, leaving stdout to command output and the MCP transport.
func (o *rootOptions) load(cmd *cobra.Command) error {
	if cmd.Flags().Changed("backend") {
		os.Setenv("EXCEL_HELPER_BACKEND", o.backend)
	}
	if cmd.Flags().Changed("text-storage") {
		os.Setenv("EXCEL_HELPER_TEXT_STORAGE", o.textStorage)
	}
	config, issues := tools.LoadConfig()
	if len(issues) != 0 {
		var messages []string
		for key, list := range z.Issues.SanitizeMap(issues) {
			for _, message := range list {
				messages = append(messages, fmt.Sprintf("%s: %s", key, message))
			}
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
	}
	o.config = config
	o.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel()}))
	slog.SetDefault(o.logger)
	return nil
}

func absolutePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the Excel tools over MCP on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := server.New(version, opts.logger)
			if err := s.Start(); err != nil {
				return fmt.Errorf("failed to start the server: %w", err)
			}
			return nil
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [file] [sheet] [cell]",
		Short: "Print the displayed text of one cell",
		Long: `Print the displayed text of one cell. An empty cell prints an empty line.

Example: excel-helper get budget.xlsx Summary B2`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absolutePath(args[0])
			if err != nil {
				return err
			}
			value, err := tools.GetCellValue(path, args[1], args[2], opts.config)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "set [file] [sheet] [cell] [text]",
		Short: "Store text in one cell and save the file",
		Long: `Store text in one cell and save the file. The sheet, row and cell are
created when missing.

Example: excel-helper set budget.xlsx Summary B2 "Q3 total" --create`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absolutePath(args[0])
			if err != nil {
				return err
			}
			if err := tools.SetCellText(path, args[1], args[2], args[3], create, opts.config); err != nil {
				return err
			}
			opts.logger.Info("cell updated", "file", path, "sheet", args[1], "cell", args[2])
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "Create the file when it does not exist")

	return cmd
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var sheetName string
	var force bool

	cmd := &cobra.Command{
		Use:   "create [file]",
		Short: "Create a workbook with one empty sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absolutePath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("file already exists: %s (use --force to replace it)", path)
			}
			return tools.CreateWorkbook(path, sheetName, opts.config)
		},
	}

	cmd.Flags().StringVar(&sheetName, "sheet", "Sheet1", "Name of the first sheet")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing file")

	return cmd
}

func newDescribeCmd(opts *rootOptions) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "describe [files...]",
		Short: "Print the sheets of one or more workbooks as YAML",
		Long: `Print the sheets of one or more workbooks as YAML: name, used range and the
ranges excel_read_range reads them in. Files are opened concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptions, err := describeFiles(args, concurrency, opts.config)
			if err != nil {
				return err
			}
			out, err := tools.MarshalYAML(descriptions)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum number of files opened at once")

	return cmd
}

// describeFiles describes every file, each on its own package, keeping the
// order of files in the result.
func describeFiles(files []string, concurrency int, config tools.EnvConfig) ([]*tools.WorkbookDescription, error) {
	descriptions := make([]*tools.WorkbookDescription, len(files))
	var g errgroup.Group
	g.SetLimit(max(concurrency, 1))
	for i, file := range files {
		g.Go(func() error {
			path, err := absolutePath(file)
			if err != nil {
				return err
			}
			description, err := tools.DescribeSheets(path, config)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			descriptions[i] = description
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return descriptions, nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List the files of a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			for _, file := range excel.ListFiles(dir, pattern) {
				fmt.Fprintln(cmd.OutOrStdout(), file)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "*.xlsx", "Glob pattern the file names must match")

	return cmd
}
