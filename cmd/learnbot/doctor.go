package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeanpaul/learnbot/internal/config"
	"github.com/jeanpaul/learnbot/internal/health"
	"github.com/jeanpaul/learnbot/internal/tui"
)

func newDoctorCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that storage is reachable and every knowledge base parses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tui.TitleStyle.Render("  learnbot health check"))
			fmt.Fprintln(out)

			backend, err := o.openBackend(false)
			if err != nil {
				fmt.Fprintf(out, "  %s %s\n", tui.ErrorStyle.Render("✗"), err)
				return errors.New("storage unavailable")
			}
			defer backend.Close()

			names, err := config.ListStoreProfiles()
			if err != nil {
				return err
			}

			healthy := true
			for _, name := range names {
				p, err := config.LoadStoreProfile(name)
				if err != nil {
					healthy = false
					fmt.Fprintf(out, "  %s %s ... %s\n", tui.StatusStoreStyle.Render("●"), name, tui.ErrorStyle.Render("✗ "+err.Error()))
					continue
				}

				fmt.Fprintf(out, "  %s %s ... ", tui.StatusStoreStyle.Render("●"), name)
				st := health.Check(cmd.Context(), backend, p.PersistenceKey())
				if st.OK() {
					fmt.Fprintf(out, "%s %s %s\n",
						tui.SuccessStyle.Render("✓ OK"),
						tui.HelpStyle.Render(fmt.Sprintf("(%d entries, %s)", st.Entries, st.Backend)),
						tui.HelpStyle.Render(st.Latency.Round(time.Millisecond).String()),
					)
					continue
				}
				healthy = false
				fmt.Fprintln(out, tui.ErrorStyle.Render("✗ "+st.Error))
			}

			if !healthy {
				return errors.New("some checks failed")
			}
			return nil
		},
	}
}
