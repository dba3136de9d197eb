package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// errNoAnswer makes ask exit non-zero without printing an error.
var errNoAnswer = errors.New("no answer")

func newAskCmd(o *rootOptions) *cobra.Command {
	var store string
	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Answer one question and exit",
		Long: `Look up the best answer for a question. Exits with status 1 when no stored
question is similar enough. Nothing is learned.`,
		Args: cobra.MinimumNArgs(1),
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

			question := strings.Join(args, " ")
			m, ok := kb.FindBestMatch(question, o.cfg.Matching.Threshold)
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "I don't know the answer to that yet.")
				return errNoAnswer
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Entry.Answer)
			return nil
		},
	}
	cmd.Flags().StringVarP(&store, "store", "s", "", "chatbot to ask")
	return cmd
}
