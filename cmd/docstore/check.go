package main

import (
	"fmt"

	"github.com/hupe1980/docstore"
	"github.com/spf13/cobra"
)

func newCheckCmd(flags *globalFlags) *cobra.Command {
	var (
		repair       bool
		sample       bool
		sampleFactor float64
	)

	cmd := &cobra.Command{
		Use:   "check [collection...]",
		Short: "Check the binary indices of stored collections",
		Long: `Loads each collection, checks every index and reports the fields that
fail. With --repair failing indices are rebuilt and the collection is saved
back. Without --repair a failing check exits non-zero.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, logger, err := flags.manager(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			names, err := collectionNames(ctx, mgr, args)
			if err != nil {
				return err
			}

			opts := docstore.CheckOptions{
				Repair:         repair,
				RandomSampling: sample,
				SampleFactor:   sampleFactor,
			}

			failed := 0
			for _, name := range names {
				c, err := mgr.Load(ctx, name, docstore.WithLogger(logger))
				if err != nil {
					return err
				}
				invalid := c.CheckAllIndexes(opts)
				if len(invalid) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d indexes)\n", name, len(c.Indexes()))
					continue
				}
				if !repair {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid %v\n", name, invalid)
					continue
				}
				if err := mgr.Save(ctx, c); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: repaired %v\n", name, invalid)
			}
			if failed > 0 {
				return fmt.Errorf("%d collection(s) with invalid indexes", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "rebuild failing indexes and save")
	cmd.Flags().BoolVar(&sample, "sample", false, "check a random sample of adjacent pairs only")
	cmd.Flags().Float64Var(&sampleFactor, "sample-factor", 0, "share of pairs to sample (default 0.1)")
	return cmd
}
