package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/jmorland/jcsh/core"
	"github.com/jmorland/jcsh/core/config"
	"github.com/jmorland/jcsh/core/eventlog"
	"github.com/jmorland/jcsh/core/history"
	"github.com/jmorland/jcsh/core/ttylog"
	"github.com/spf13/cobra"
)

var (
	cfgPath    string
	recordPath string
)

func configPath() (string, error) {
	if cfgPath != "" {
		return cfgPath, nil
	}
	return config.DefaultDir()
}

func loadConfig() (*config.Configuration, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	configuration, err := config.Load(path)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "jcsh",
	Short:   "Job control shell",
	Long:    `An interactive shell built around clean foreground job control.`,
	Version: "1.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runShell()
	},
}

// runShell runs an interactive session on the process's own terminal.
// A missing configuration is fine; the shell then runs without
// persistent history, event logs, or transcripts.
func runShell() error {
	opts := core.SessionOptions{}

	configuration, err := loadConfig()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if configuration != nil {
		if err := configuration.Validate(); err != nil {
			return err
		}

		eventFd, err := configuration.OpenEventLog()
		if err != nil {
			return err
		}
		defer eventFd.Close()
		opts.Events = eventlog.NewJSONLinesLogRecorder(eventFd)

		store := history.NewSQLiteStore(configuration.HistoryPath(), configuration.History.Limit)
		defer store.Close()
		opts.History = store
	}

	transcript, err := openTranscript(configuration)
	if err != nil {
		return err
	}
	if transcript != nil {
		defer transcript.Close()
		opts.Transcript = ttylog.NewAsciicastLogSink(transcript)
	}

	session, err := core.NewSession(configuration, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	session.Run()
	return nil
}

// openTranscript picks where the session recording goes: the --record
// flag wins, otherwise sessions are recorded under the configuration's
// transcript directory when a configuration exists.
func openTranscript(configuration *config.Configuration) (io.WriteCloser, error) {
	if recordPath != "" {
		return os.Create(recordPath)
	}
	if configuration == nil {
		return nil, nil
	}

	name := fmt.Sprintf("%s.%s", time.Now().Format(time.RFC3339), ttylog.AsciicastFileExt)
	return configuration.CreateTranscript(name)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config directory (default ~/.jcsh)")
	rootCmd.Flags().StringVar(&recordPath, "record", "", "record the session to an asciicast file")
}
