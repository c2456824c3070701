package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/hupe1980/docstore"
	"github.com/hupe1980/docstore/persistence"
	"github.com/spf13/cobra"
)

func newInspectCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [collection...]",
		Short: "Print frame and index statistics of stored collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, store, logger, err := flags.manager(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			names, err := collectionNames(ctx, mgr, args)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, name := range names {
				data, err := store.Get(ctx, persistence.BlobName(name))
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				h, err := persistence.ReadHeader(data)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				snap, err := persistence.Decode(data)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				c, err := docstore.Restore(snap, docstore.WithLogger(logger))
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}

				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "collection:\t%s\n", name)
				fmt.Fprintf(w, "codec:\t%s\n", h.Codec)
				fmt.Fprintf(w, "compression:\t%s\n", h.Compression)
				fmt.Fprintf(w, "bytes:\t%d\n", len(data))
				fmt.Fprintf(w, "documents:\t%d\n", c.Count())
				fmt.Fprintf(w, "next id:\t%d\n", snap.NextID)
				fmt.Fprintf(w, "INDEX\tUNIQUE\tADAPTIVE\tDIRTY\tENTRIES\n")
				for _, ix := range c.Indexes() {
					fmt.Fprintf(w, "%s\t%t\t%t\t%t\t%d\n", ix.Field, ix.Unique, ix.Adaptive, ix.Dirty, ix.Entries)
				}
			}
			return w.Flush()
		},
	}
}
