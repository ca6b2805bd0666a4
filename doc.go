// Package harvest is the composition root of the note-export ingester.
//
// It wires the pipeline stages (metadata parsing, classification, validation, translation
// splitting, record generation) to the archive and filesystem adapters using the hexagonal
// layout of pkg/core and pkg/adapters.
//
// Usage:
//
//	h, err := harvest.New("./records",
//		harvest.WithLogger(logger),
//		harvest.WithDryRun(false),
//	)
//	if err != nil {
//		return err
//	}
//
//	res, err := h.Run(ctx, h.Source("./inbox"))
//	fmt.Println(len(res.Report.Success), "notes,", res.Stats.Written, "records written")
package harvest
