package main

import (
	"errors"
	"net/http"

	"github.com/pbaille/moodlog/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal session as local JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			session := rt.session()
			if err := session.Refresh(cmd.Context()); err != nil {
				rt.log.Warnw("initial load failed", "error", err)
			}

			srv := server.New(session, rt.client, rt.log, addr)
			if err := srv.Run(cmd.Context()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "listen address")
	return cmd
}
