package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/artwall/harvest"
)

func printReport(w io.Writer, res *harvest.Result, dryRun bool) {
	report := res.Report

	fmt.Fprintf(w, "Run %s\n", report.RunID)
	fmt.Fprintf(w, "  notes processed: %d\n", report.Total())
	fmt.Fprintf(w, "  succeeded:       %d\n", len(report.Success))
	fmt.Fprintf(w, "  failed:          %d\n", len(report.Failed))
	if dryRun {
		fmt.Fprintf(w, "  records:         %d (dry run, nothing written)\n", res.Stats.Written)
	} else {
		fmt.Fprintf(w, "  records written: %d, unchanged: %d\n", res.Stats.Written, res.Stats.Unchanged)
	}
	if res.Committed {
		fmt.Fprintln(w, "  committed to git")
	}

	if mediums := report.Mediums(); len(mediums) > 0 {
		fmt.Fprintln(w, "\nPer medium:")
		for _, m := range mediums {
			fmt.Fprintf(w, "  %-12s %d\n", m, report.MediumCounts[m])
		}
		fmt.Fprintln(w, "\nPer medium/subtype:")
		for _, s := range report.Subtypes() {
			fmt.Fprintf(w, "  %-24s %d\n", s, report.SubtypeCounts[s])
		}
	}

	if len(report.Failed) > 0 {
		fmt.Fprintln(w, "\nFailures:")
		for _, f := range report.Failed {
			fmt.Fprintf(w, "  [%s] %s: %s\n", f.Kind, f.Title, f.Reason)
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range report.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
}

func printJSON(w io.Writer, res *harvest.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Report    any  `json:"report"`
		Written   int  `json:"written"`
		Unchanged int  `json:"unchanged"`
		Committed bool `json:"committed"`
	}{res.Report, res.Stats.Written, res.Stats.Unchanged, res.Committed})
}
