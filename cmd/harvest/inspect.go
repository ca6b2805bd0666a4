package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/artwall/harvest/pkg/adapters/fs"
	"github.com/artwall/harvest/pkg/core"
)

var inspectBody bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <record>",
	Short: "Print the metadata envelope of a written text record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		meta, body, err := fs.ReadRecord(args[0])
		if err != nil {
			fatal("Failed to read record", err)
		}
		printRecord(cmd.OutOrStdout(), meta, body, inspectBody)
	},
}

func printRecord(w io.Writer, meta core.Metadata, body []byte, withBody bool) {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "%-12s %s\n", k+":", meta.String(k))
	}
	if withBody {
		fmt.Fprintf(w, "\n%s\n", body)
		return
	}
	fmt.Fprintf(w, "\n(%d bytes of body)\n", len(body))
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectBody, "body", false, "Also print the record body")
}
