package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scannersFormat string

var scannersCmd = &cobra.Command{
	Use:   "scanners [root]",
	Short: "Show the registered scanners and rules",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScanners,
}

func init() {
	scannersCmd.Flags().StringVar(&scannersFormat, "format", "human", "Output format (human, json)")
	rootCmd.AddCommand(scannersCmd)
}

// ScannersResponseCLI describes the configured pipeline.
type ScannersResponseCLI struct {
	Root      string   `json:"root"`
	Scanners  []string `json:"scanners"`
	RuleCount int      `json:"rule_count"`
	Fields    []string `json:"fields"`
}

func runScanners(cmd *cobra.Command, args []string) error {
	a, err := newApp(rootArg(args))
	if err != nil {
		return err
	}
	defer a.Close()

	resp := &ScannersResponseCLI{
		Root:      a.root,
		Scanners:  a.scanners.Names(),
		RuleCount: a.rules.Count(),
		Fields:    []string{},
	}
	for _, f := range a.rules.AllFieldsMetadata() {
		resp.Fields = append(resp.Fields, f.ID)
	}

	out, err := FormatResponse(resp, OutputFormat(scannersFormat))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
