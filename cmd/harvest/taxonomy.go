package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artwall/harvest/pkg/taxonomy"
)

var taxonomyFile string

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Print the medium/subtype table and the legacy category mapping",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tax := taxonomy.Default()
		if taxonomyFile != "" {
			loaded, err := taxonomy.LoadFile(taxonomyFile)
			if err != nil {
				fatal("Failed to load taxonomy", err)
			}
			tax = loaded
		}
		printTaxonomy(cmd.OutOrStdout(), tax)
	},
}

func printTaxonomy(w io.Writer, tax *taxonomy.Taxonomy) {
	fmt.Fprintln(w, "Mediums:")
	for _, m := range tax.Mediums() {
		var roles []string
		if tax.IsText(m) {
			roles = append(roles, "text")
		}
		if tax.IsMedia(m) {
			roles = append(roles, "media")
		}
		if tax.IsAudio(m) {
			roles = append(roles, "audio")
		}
		fmt.Fprintf(w, "  %-10s %s", m, strings.Join(tax.Subtypes(m), ", "))
		if len(roles) > 0 {
			fmt.Fprintf(w, "  [%s]", strings.Join(roles, ","))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "\nLegacy categories:")
	for _, c := range tax.LegacyCategories() {
		p, _ := tax.Legacy(c)
		fmt.Fprintf(w, "  %-12s -> %s\n", c, p)
	}
	fmt.Fprintf(w, "\nFallback: %s\n", tax.Fallback())
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
	taxonomyCmd.Flags().StringVar(&taxonomyFile, "file", "", "Print a taxonomy override file instead of the built-in table")
}
