package main

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reclaim/viewerhost/internal/config"
	"github.com/reclaim/viewerhost/internal/fileaccess"
	"github.com/reclaim/viewerhost/internal/handlers"
	"github.com/reclaim/viewerhost/internal/logging"
	"github.com/reclaim/viewerhost/internal/messaging"
	"github.com/reclaim/viewerhost/internal/platform"
	"github.com/reclaim/viewerhost/internal/resolver"
)

const appName = "viewerhost"

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:          appName + " [flags] [file]",
		Short:        "Native file host for the desktop viewer",
		Long:         "Answers load, save and getFullPath requests for the file given on launch,\nover length-prefixed JSON messages on stdin/stdout.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.New(), cmd.Flags())
			if err != nil {
				return err
			}

			log, closer, err := logging.New(cfg, stderr)
			if err != nil {
				return err
			}
			defer closer.Close()

			session := log.WithField("session", uuid.NewString())

			// Launch argument 1 is the target file, whatever flags came before it
			argv0 := appName
			if len(os.Args) > 0 {
				argv0 = os.Args[0]
			}
			proc := platform.New(append([]string{argv0}, args...))

			files := fileaccess.New(afero.NewOsFs(), resolver.New(proc, session), session)
			return serve(stdin, stdout, files, session)
		},
	}
	cmd.SetErr(stderr)
	cmd.Flags().SetInterspersed(false)
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// serve answers messages until the dispatcher closes its end of the channel
func serve(r io.Reader, w io.Writer, files handlers.Files, log logrus.FieldLogger) error {
	log.Info("Native host started")

	for {
		msg, err := messaging.ReadMessage(r)
		if err == io.EOF {
			log.Info("Dispatcher closed the channel")
			return nil
		}
		if errors.Is(err, messaging.ErrMessageTooLarge) {
			log.WithError(err).Warn("Oversized message dropped")
			tooLarge := messaging.Response{Success: false, Error: "too_large", Message: err.Error()}
			if err := messaging.WriteMessage(w, tooLarge); err != nil {
				log.WithError(err).Error("Error writing response")
				return err
			}
			continue
		}
		if err != nil {
			log.WithError(err).Error("Error reading message")
			return err
		}

		log.WithField("action", msg.Action).WithField("suffix", msg.Suffix).Debug("Message received")
		response := handleMessage(msg, files)
		if err := messaging.WriteMessage(w, response); err != nil {
			log.WithError(err).Error("Error writing response")
			return err
		}
	}
}

func handleMessage(msg *messaging.Message, files handlers.Files) messaging.Response {
	switch msg.Action {
	case "getFullPath":
		return handlers.HandleGetFullPath(msg, files)
	case "load":
		return handlers.HandleLoad(msg, files)
	case "save":
		return handlers.HandleSave(msg, files)
	case "ping":
		return messaging.Response{Success: true, Message: "pong"}
	default:
		return messaging.Response{
			Success: false,
			Error:   "unknown",
			Message: "Unknown action: " + msg.Action,
		}
	}
}
