package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"source-resolver/core/record"
	"source-resolver/core/resolver"
	"source-resolver/core/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	tableName     string
	recordLimit   int
	recordColumns []string
)

// recordsCmd represents the records command
var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Print records of a resolved table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		desc, err := loadDescriptor(descriptorPath)
		if err != nil {
			return err
		}

		rs, err := resolver.New(rt.logger).ResolveDescriptor(ctx, desc, rt.materializer)
		if err != nil {
			return err
		}
		defer func() {
			if err := rs.Close(); err != nil {
				rt.logger.Warn("Failed to close source", zap.Error(err))
			}
		}()

		table, ok := rs.Table(tableName)
		if !ok {
			return fmt.Errorf("table %q not found, available: %s", tableName, strings.Join(rs.TableNames(), ", "))
		}

		columns := recordColumns
		if len(columns) == 0 {
			columns = table.Schema().Names()
		}
		for _, name := range columns {
			if _, ok := table.Schema().Lookup(name); !ok {
				return fmt.Errorf("column %q not found in table %s", name, tableName)
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(columns, "\t"))
		n := 0
		err = record.ForEach(ctx, table, func(r record.Record) error {
			cells := make([]string, len(columns))
			for i, name := range columns {
				cells[i] = utils.ToString(r.Value(name))
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
			n++
			if recordLimit > 0 && n >= recordLimit {
				return errLimitReached
			}
			return nil
		})
		if err != nil && !errors.Is(err, errLimitReached) {
			return err
		}
		return w.Flush()
	},
}

var errLimitReached = errors.New("limit reached")

func init() {
	recordsCmd.Flags().StringVarP(&descriptorPath, "descriptor", "d", "", "Path to the source descriptor")
	recordsCmd.Flags().StringVarP(&tableName, "table", "t", "", "Table to print")
	recordsCmd.Flags().IntVarP(&recordLimit, "limit", "n", 20, "Maximum number of records (0 prints all)")
	recordsCmd.Flags().StringSliceVarP(&recordColumns, "columns", "c", nil, "Columns to print, in order (default all)")
	_ = recordsCmd.MarkFlagRequired("table")
	RootCmd.AddCommand(recordsCmd)
}
