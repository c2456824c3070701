package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/docstore"
	"github.com/hupe1980/docstore/blobstore"
	"github.com/hupe1980/docstore/codec"
	"github.com/hupe1980/docstore/document"
	"github.com/spf13/cobra"
)

const maxLineSize = 16 << 20

func newImportCmd(flags *globalFlags) *cobra.Command {
	var (
		configPath string
		appendTo   bool
	)

	cmd := &cobra.Command{
		Use:   "import <collection> <file.jsonl>",
		Short: "Import JSON lines into a collection and save its snapshot",
		Long: `Reads one JSON object per line ("-" reads stdin), inserts the objects
into a collection and writes the collection snapshot to the backend.

Index declarations and clone settings come from --config, a YAML file in the
collection config format. With --append the documents are added to the
stored collection instead of replacing it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			mgr, _, logger, err := flags.manager(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var c *docstore.Collection
			if appendTo {
				c, err = mgr.Load(ctx, name, docstore.WithLogger(logger))
				if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
					return err
				}
			}
			if c == nil {
				cfg := docstore.DefaultConfig()
				if configPath != "" {
					if cfg, err = docstore.LoadConfig(configPath); err != nil {
						return err
					}
				}
				if c, err = docstore.New(name, docstore.WithConfig(cfg), docstore.WithLogger(logger)); err != nil {
					return err
				}
			}

			in := cmd.InOrStdin()
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			docs, err := readJSONLines(in)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if _, err := c.InsertMany(docs); err != nil {
				return err
			}
			if err := mgr.Save(ctx, c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d documents into %s (%d total)\n", len(docs), name, c.Count())
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML collection config (indices, unique, clone, ...)")
	cmd.Flags().BoolVar(&appendTo, "append", false, "append to the stored collection")
	return cmd
}

// readJSONLines parses one JSON object per non-blank line. Numbers without a
// fraction become integers.
func readJSONLines(r io.Reader) ([]document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var docs []document.Document
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		d, err := codec.DecodeDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		docs = append(docs, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
