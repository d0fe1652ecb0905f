package cmd

import (
	"fmt"
	"strings"

	"source-resolver/core/record"
	"source-resolver/core/resolver"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	descriptorPath string
	countFlag      bool
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a source descriptor and list its tables",
	Long:  `Materializes the descriptor, resolves every table and prints its schema. With --count every table is read to count its records.`,
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

		fmt.Printf("\n=== Source %s ===\n", rs.Name)
		if len(rs.Tables) == 0 {
			fmt.Println("No tables resolved")
			return nil
		}
		for _, name := range rs.TableNames() {
			table := rs.Tables[name]
			line := fmt.Sprintf("%s %s", name, table.Schema())
			if countFlag {
				n, err := record.Count(ctx, table)
				if err != nil {
					return fmt.Errorf("failed to count table %s: %w", name, err)
				}
				line += fmt.Sprintf(" records=%d", n)
			}
			fmt.Println(line)
		}
		fmt.Printf("Tables: %s\n", strings.Join(rs.TableNames(), ", "))
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVarP(&descriptorPath, "descriptor", "d", "", "Path to the source descriptor")
	resolveCmd.Flags().BoolVar(&countFlag, "count", false, "Count the records of every table")
	RootCmd.AddCommand(resolveCmd)
}
