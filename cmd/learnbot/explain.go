package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeanpaul/learnbot/internal/explain"
)

func newExplainCmd(o *rootOptions) *cobra.Command {
	var store string
	cmd := &cobra.Command{
		Use:   "explain QUESTION...",
		Short: "Show how a question is matched against the knowledge base",
		Args:  cobra.MinimumNArgs(1),
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

			ex := explain.Explain(kb, strings.Join(args, " "), o.cfg.Matching.Threshold)
			fmt.Fprint(cmd.OutOrStdout(), ex.String())
			return nil
		},
	}
	cmd.Flags().StringVarP(&store, "store", "s", "", "chatbot to explain against")
	return cmd
}
