package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeanpaul/learnbot/internal/config"
	"github.com/jeanpaul/learnbot/internal/logging"
)

// rootOptions holds state shared by every subcommand.
type rootOptions struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{v: viper.New()}
	co := &chatOptions{}

	root := &cobra.Command{
		Use:   "learnbot",
		Short: "A chatbot that learns the answers you teach it",
		Long: `learnbot answers questions from a knowledge base of question/answer pairs,
matching by text similarity. When it doesn't know an answer it asks you to
teach it, and remembers what you taught for next time.

Running learnbot with no command starts a chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, o, co)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.cfgFile, "config", "", "config file (default is ./config.yaml or ~/.config/learnbot/config.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error, quiet)")
	pf.String("storage", "file", "storage backend (file, sqlite, postgres, badger, s3, memory)")
	pf.Float64("threshold", 0.6, "minimum similarity for a question to match, in (0, 1]")

	_ = o.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = o.v.BindPFlag("storage.type", pf.Lookup("storage"))
	_ = o.v.BindPFlag("matching.threshold", pf.Lookup("threshold"))

	co.addFlags(root)

	root.AddCommand(
		newChatCmd(o),
		newAskCmd(o),
		newServeCmd(o),
		newImportCmd(o),
		newExportCmd(o),
		newExplainCmd(o),
		newStoresCmd(o),
		newDoctorCmd(o),
		newVersionCmd(),
	)
	return root
}

// initConfig reads .env, the config file and LEARNBOT_* variables, then
// applies the logging settings.
func (o *rootOptions) initConfig() error {
	// .env is optional
	_ = godotenv.Load()

	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	}
	cfg, err := config.LoadFrom(o.v)
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.Log); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}
