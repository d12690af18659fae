package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// tableView is the tabular rendering of a value.
type tableView struct {
	header []string
	rows   [][]string
	footer string
}

// render writes value as JSON or YAML, or view as a table.
func render(cmd *cobra.Command, value any, view tableView) error {
	out := cmd.OutOrStdout()

	switch format := viper.GetString(KeyOutput); format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(value)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)

		err := encoder.Encode(value)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	case constants.FormatTable, "":
		return renderTable(out, view)
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}

func renderTable(out io.Writer, view tableView) error {
	if len(view.rows) == 0 {
		_, err := fmt.Fprintln(out, "No results")

		return err
	}

	table := tablewriter.NewWriter(out)

	header := make([]any, len(view.header))
	for i, column := range view.header {
		header[i] = column
	}

	table.Header(header...)

	for _, row := range view.rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if view.footer != "" {
		_, err = fmt.Fprintln(out, view.footer)
	}

	return err
}

func paginationFooter(meta cms.Meta) string {
	if meta.Pagination == nil {
		return ""
	}

	p := meta.Pagination

	return fmt.Sprintf("Page %d of %d (%d total)", p.Page, p.PageCount, p.Total)
}

func propertyView(pairs ...[2]string) tableView {
	rows := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, []string{pair[0], pair[1]})
	}

	return tableView{header: []string{"Property", "Value"}, rows: rows}
}
