package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rpggio/lapledger/internal/csvsync"
	"github.com/rpggio/lapledger/internal/tracker"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string
	var xlsx bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger as spreadsheet CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if xlsx && output == "" {
				return fmt.Errorf("--xlsx needs --output")
			}
			return ctx.withTracker(cmd, func(_ context.Context, tr *tracker.Tracker) error {
				if output == "" {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), tr.ExportCSV())
					return err
				}
				return writeExport(output, func(w io.Writer) error {
					if xlsx {
						return tr.ExportXLSX(w)
					}
					_, err := io.WriteString(w, tr.ExportCSV())
					return err
				})
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "Write an XLSX workbook")
	return cmd
}

// writeExport writes the file byte-exact; the close error is part of the
// write.
func writeExport(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import spreadsheet CSV, replacing or appending to the ledger",
		Long: "Import spreadsheet CSV. Without --mode the batch is summarized and, on a terminal,\n" +
			"you are asked whether to replace the ledger, append to it or cancel.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mode csvsync.Mode
			if modeFlag != "" {
				m, err := csvsync.ParseMode(modeFlag)
				if err != nil {
					return err
				}
				mode = m
			}

			path := args[0]
			promptIn := cmd.InOrStdin()
			if mode == "" && (path == "-" || !isInteractive(promptIn)) {
				return fmt.Errorf("--mode is required when not running interactively")
			}

			var src io.Reader
			if path == "-" {
				src = cmd.InOrStdin()
			} else {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open %s: %w", path, err)
				}
				defer f.Close()
				src = f
			}

			return ctx.withTracker(cmd, func(c context.Context, tr *tracker.Tracker) error {
				batch, err := tr.StageImport(src)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printBatchSummary(out, batch, len(tr.Times()))

				if mode == "" {
					mode, err = promptMode(promptIn, out)
					if err != nil {
						return err
					}
				}
				if err := tr.CommitImport(c, batch, mode); err != nil {
					return err
				}
				switch mode {
				case csvsync.ModeCancel:
					fmt.Fprintln(out, "Import cancelled")
				default:
					fmt.Fprintf(out, "Imported %d rows (%s)\n", len(batch.Entries), mode)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&modeFlag, "mode", "", "replace, append or cancel")
	return cmd
}

func printBatchSummary(w io.Writer, batch *csvsync.Batch, existing int) {
	fmt.Fprintf(w, "%d rows read, %d skipped, %d new profiles; ledger has %d times\n",
		len(batch.Entries), batch.Skipped, len(batch.NewProfiles), existing)
	for _, re := range batch.RowErrors {
		fmt.Fprintf(w, "  line %d: %s\n", re.Line, re.Reason)
	}
}

func promptMode(in io.Reader, out io.Writer) (csvsync.Mode, error) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "[r]eplace, [a]ppend or [c]ancel? ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return csvsync.ModeCancel, nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "r", "replace":
			return csvsync.ModeReplace, nil
		case "a", "append":
			return csvsync.ModeAppend, nil
		case "c", "cancel", "":
			return csvsync.ModeCancel, nil
		}
	}
}
