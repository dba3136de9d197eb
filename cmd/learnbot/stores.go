package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeanpaul/learnbot/internal/config"
)

func newStoresCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List, add and remove chatbots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := config.ListStoreProfiles()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKEY\tSEEDED\tDESCRIPTION")
			for _, name := range names {
				p, err := config.LoadStoreProfile(name)
				if err != nil {
					fmt.Fprintf(w, "%s\t-\t-\t%s\n", name, err)
					continue
				}
				marker := ""
				if name == o.cfg.DefaultStore {
					marker = " (default)"
				}
				fmt.Fprintf(w, "%s%s\t%s\t%d\t%s\n", name, marker, p.PersistenceKey(), len(p.Seed), p.Description)
			}
			return w.Flush()
		},
	}
	cmd.AddCommand(newStoresAddCmd(), newStoresRemoveCmd())
	return cmd
}

func newStoresAddCmd() *cobra.Command {
	var p config.StoreProfile
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a new, empty chatbot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Name = args[0]
			if _, err := config.LoadStoreProfile(p.Name); err == nil {
				return fmt.Errorf("store '%s' already exists", p.Name)
			}
			if p.Title == "" {
				p.Title = p.Name
			}
			if err := config.SaveStoreProfile(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created store %s\n", p.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Title, "title", "", "title shown in the chat header")
	cmd.Flags().StringVar(&p.Description, "description", "", "one-line description")
	cmd.Flags().StringVar(&p.Placeholder, "placeholder", "Ask a question...", "input placeholder")
	cmd.Flags().StringVar(&p.Key, "key", "", "persistence key (defaults to the name)")
	return cmd
}

func newStoresRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a chatbot profile; its knowledge base is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteStoreProfile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed store %s\n", args[0])
			return nil
		},
	}
}
