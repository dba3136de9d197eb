package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeanpaul/learnbot/internal/importer"
	"github.com/jeanpaul/learnbot/internal/tui"
)

func newImportCmd(o *rootOptions) *cobra.Command {
	var (
		store  string
		render bool
	)
	cmd := &cobra.Command{
		Use:   "import SOURCE...",
		Short: "Teach question/answer pairs from files or web pages",
		Long: `Import question/answer pairs into a chatbot's knowledge base.

Sources may be files, glob patterns (quote them: 'faq/**/*.md') or http(s)
URLs. Supported files: .xlsx/.xlsm spreadsheets with question and answer
columns, .pdf and .md/.txt FAQs using Q:/A: markers or headings, and .json
knowledge-base files. Pairs already in the knowledge base are skipped.`,
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

			added, results, err := importer.Into(cmd.Context(), kb, args, importer.Options{Render: render})
			out := cmd.OutOrStdout()
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(out, "  %s %s: %s\n", tui.ErrorStyle.Render("✗"), r.Source, r.Err)
					continue
				}
				fmt.Fprintf(out, "  %s %s: %d pairs\n", tui.SuccessStyle.Render("✓"), r.Source, len(r.Entries))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Added %d new entries to %s (%d total)\n", added, kb.Key(), kb.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&store, "store", "s", "", "chatbot to teach")
	cmd.Flags().BoolVar(&render, "render", false, "load web pages in headless Chrome before extracting text")
	return cmd
}
