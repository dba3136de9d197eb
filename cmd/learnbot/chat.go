package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeanpaul/learnbot/internal/config"
	"github.com/jeanpaul/learnbot/internal/engine"
	"github.com/jeanpaul/learnbot/internal/headless"
	"github.com/jeanpaul/learnbot/internal/tui"
)

type chatOptions struct {
	headless  bool
	ephemeral bool
	store     string
}

func (co *chatOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&co.headless, "headless", false, "read questions from stdin, one per line, instead of the full-screen chat")
	cmd.Flags().BoolVar(&co.ephemeral, "ephemeral", false, "keep everything learned in memory only")
	cmd.Flags().StringVarP(&co.store, "store", "s", "", "chatbot to talk to (default from config, see 'learnbot stores')")
}

func newChatCmd(o *rootOptions) *cobra.Command {
	co := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to a chatbot and teach it new answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, o, co)
		},
	}
	co.addFlags(cmd)
	return cmd
}

func runChat(cmd *cobra.Command, o *rootOptions, co *chatOptions) error {
	ctx := cmd.Context()

	backend, err := o.openBackend(co.ephemeral)
	if err != nil {
		return err
	}
	defer backend.Close()

	eng, profile, err := o.openEngine(ctx, backend, o.storeName(co.store))
	if err != nil {
		return err
	}

	if co.headless {
		return headless.Run(ctx, eng, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), headless.Options{
			Greeting: fmt.Sprintf("%s (type '%s' to leave)", profile.Title, eng.Options().ExitWord),
			Prompt:   "> ",
		})
	}

	open := func(ctx context.Context, name string) (*engine.Engine, *config.StoreProfile, error) {
		return o.openEngine(ctx, backend, name)
	}
	return tui.Run(ctx, eng, profile, open, config.ListStoreProfiles)
}
