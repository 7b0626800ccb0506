package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modtrack/internal/model"
)

var fieldsFormat string

var fieldsCmd = &cobra.Command{
	Use:   "fields [root]",
	Short: "List the field metadata declared by the registered rules",
	Long: `List every field the registered rules produce, deduplicated by id, with the
dashboard flags and the enumerated values that history aggregation counts.

Examples:
  modtrack fields
  modtrack fields --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFields,
}

func init() {
	fieldsCmd.Flags().StringVar(&fieldsFormat, "format", "human", "Output format (human, json)")
	rootCmd.AddCommand(fieldsCmd)
}

// FieldsResponseCLI lists registered field metadata.
type FieldsResponseCLI struct {
	Fields []model.FieldMetadata `json:"fields"`
}

func runFields(cmd *cobra.Command, args []string) error {
	a, err := newApp(rootArg(args))
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := FormatResponse(&FieldsResponseCLI{Fields: a.rules.AllFieldsMetadata()}, OutputFormat(fieldsFormat))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
