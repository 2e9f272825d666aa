package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightforge-cli/internal/utils"
)

var sheetsFormat string

var sheetsCmd = &cobra.Command{
	Use:   "sheets <file>",
	Short: "List the sheets of a workbook with row and column counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := openWorkbook(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch strings.ToLower(sheetsFormat) {
		case "json", "yaml", "yml":
			data, err := utils.Marshal(wb.Metadata, sheetsFormat)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		case "", "text":
		default:
			return fmt.Errorf("unsupported --format: %s (use text|json|yaml)", sheetsFormat)
		}

		m := wb.Metadata
		fmt.Fprintf(out, "%s (%d bytes)\n", m.FileName, m.FileSize)
		for i, s := range wb.Sheets {
			fmt.Fprintf(out, "  %d. %s  rows=%d columns=%d\n", i+1, s.Name, len(s.Rows), len(s.Columns))
		}
		fmt.Fprintf(out, "Total: %d rows, %d columns\n", m.TotalRows, m.TotalColumns)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
	sheetsCmd.Flags().StringVar(&sheetsFormat, "format", "text", "output format: text|json|yaml")
}
