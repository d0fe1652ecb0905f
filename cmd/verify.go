package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"source-resolver/core/discovery"
	"source-resolver/core/verify"

	"github.com/spf13/cobra"
)

var jsonFlag bool

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a source descriptor against its storage",
	Long:  `Runs discovery: checks the descriptor, lists and maps blobs, infers schemas, samples records and predicts conflicts. Exits non-zero when errors are found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		desc, err := loadDescriptor(descriptorPath)
		if err != nil {
			return err
		}

		res := discovery.Discover(cmd.Context(), desc, rt.materializer, discovery.Options{
			SampleRecords: rt.cfg.Resolver.SampleRecords,
			Logger:        rt.logger,
		})

		if jsonFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
		} else {
			printResult(res)
		}
		return discovery.Err(res.Report)
	},
}

func printResult(res discovery.Result) {
	fmt.Printf("\n=== Source %s ===\n", res.Source)
	fmt.Printf("Blobs: %d (unmapped: %d)\n", res.BlobCount, res.UnmappedCount)
	for _, t := range res.Tables {
		fmt.Printf("- %s (%d blob(s), %d column(s))", t.Name, len(t.Blobs), len(t.Schema))
		if t.Strategy != "" {
			fmt.Printf(" strategy=%s", t.Strategy)
		}
		fmt.Println()
	}

	counts := discovery.Counts(res.Report)
	fmt.Printf("\nErrors: %d, Warnings: %d, Info: %d\n",
		counts[verify.SeverityError], counts[verify.SeverityWarning], counts[verify.SeverityInfo])
	for _, issue := range res.Report.Issues {
		fmt.Println(issue.String())
	}
}

func init() {
	verifyCmd.Flags().StringVarP(&descriptorPath, "descriptor", "d", "", "Path to the source descriptor")
	verifyCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the report as JSON")
	RootCmd.AddCommand(verifyCmd)
}
