package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pbaille/moodlog/internal/render"
	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [id]",
		Short: "Talk with the assistant about an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(false)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			session := rt.session()
			if err := session.Refresh(ctx); err != nil {
				return noticeError(session, err)
			}
			e, err := findEntry(session.Entries.Entries(), args[0])
			if err != nil {
				return err
			}
			if err := session.Select(e.ID); err != nil {
				return err
			}
			if err := session.OpenChat(); err != nil {
				return err
			}
			defer session.CloseChat()

			for _, m := range session.Chat.Transcript() {
				fmt.Printf("assistant> %s\n\n", render.Markdown(m.Message))
			}
			fmt.Println("(type /quit or press ctrl+d to leave)")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("you> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "/quit" || line == "/exit" {
					return nil
				}

				reply, err := session.SendChat(ctx, line)
				if err != nil {
					rt.log.Warnw("chat reply failed", "error", err)
				}
				if reply != nil {
					fmt.Printf("assistant> %s\n\n", render.Markdown(reply.Message))
				}
				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}
}
