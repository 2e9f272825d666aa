package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightforge-cli/internal/dashboard"
	"github.com/KaramelBytes/insightforge-cli/internal/session"
	"github.com/KaramelBytes/insightforge-cli/internal/workbook"
)

var (
	resList       bool
	resDelete     bool
	resFormat     string
	resOutputPath string
)

var resumeCmd = &cobra.Command{
	Use:   "resume [session]",
	Short: "Reload a saved session and re-run the analysis",
	Long: `Reload the rows and filter selection saved with 'analyze --save' and
render the analysis again. Without an argument the most recently updated
session is used. The argument may be a session ID or name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := session.NewStore(settings().StateDir)
		out := cmd.OutOrStdout()

		if resList {
			list, err := store.List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No saved sessions")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSHEET\tROWS\tUPDATED")
			for _, s := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Sheet, s.RowCount, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		}

		var (
			sess *session.Session
			err  error
		)
		if len(args) == 1 {
			sess, err = store.Load(args[0])
		} else {
			sess, err = store.Latest()
		}
		if errors.Is(err, session.ErrNotFound) && len(args) == 0 {
			return fmt.Errorf("%w: run 'insightforge analyze <file> --save' first", err)
		}
		if err != nil {
			return err
		}

		if resDelete {
			if err := store.Delete(sess.ID); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Deleted session %s (%s)\n", sess.ID, sess.Name)
			return nil
		}

		sheet := workbook.Sheet{Name: sess.Sheet, Columns: sess.Columns, Rows: sess.Rows}
		snap, err := dashboard.New(appLogger(), sess.Chart).Build(cmd.Context(), sheet, sess.Filters)
		if err != nil {
			return err
		}
		meta := workbook.New(sess.Source, 0, []workbook.Sheet{sheet}).Metadata
		data, err := renderSnapshot(sess.Name, meta, snap, resFormat, settings().SampleRows)
		if err != nil {
			return err
		}
		return emit(out, resOutputPath, data, "analysis")
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
	resumeCmd.Flags().BoolVar(&resList, "list", false, "list saved sessions")
	resumeCmd.Flags().BoolVar(&resDelete, "delete", false, "delete the selected session instead of analyzing it")
	resumeCmd.Flags().StringVar(&resFormat, "format", "md", "output format: md|json|yaml")
	resumeCmd.Flags().StringVarP(&resOutputPath, "output", "o", "", "write the report to this file instead of stdout")
}
