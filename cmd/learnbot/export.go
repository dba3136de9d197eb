package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeanpaul/learnbot/internal/importer"
	"github.com/jeanpaul/learnbot/internal/knowledge"
)

func newExportCmd(o *rootOptions) *cobra.Command {
	var store string
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write a chatbot's knowledge base to .xlsx or .json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := o.openBackend(false)
			if err != nil {
				return err
			}
			defer backend.Close()

			kb, _, err := o.openStore(cmd.Context(), backend, o.storeName(store))
			if err != nil {
				return err
			}

			path := args[0]
			switch strings.ToLower(filepath.Ext(path)) {
			case ".xlsx":
				err = importer.WriteSpreadsheet(path, kb.Entries())
			case ".json":
				var data []byte
				data, err = knowledge.Encode(kb.Snapshot())
				if err == nil {
					err = os.WriteFile(path, data, 0644)
				}
			default:
				return fmt.Errorf("unsupported export format %q (use .xlsx or .json)", filepath.Ext(path))
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", kb.Len(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&store, "store", "s", "", "chatbot to export")
	return cmd
}
