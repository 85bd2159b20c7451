// soundctl is a terminal client for a soundroom server: create rooms, join
// them, trigger cues and tail the activity feed without a browser.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/soundroom/soundroom/client"
)

var serverURL string

func wsURL(httpURL string) string {
	u := strings.TrimRight(httpURL, "/")
	if strings.HasPrefix(u, "https://") {
		return "wss://" + strings.TrimPrefix(u, "https://")
	}
	return "ws://" + strings.TrimPrefix(u, "http://")
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	root := &cobra.Command{
		Use:           "soundctl",
		Short:         "Soundroom terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:3000", "server base URL")

	root.AddCommand(createCmd(), joinCmd(), soundsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a room and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := &client.RoomAPI{BaseURL: serverURL}
			room, err := api.CreateRoom(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("room %q created\nid: %s\n", room.Name, room.ID)
			return nil
		},
	}
}

func soundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sounds",
		Short: "List the sound catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range client.Sounds() {
				fmt.Printf("%2d  %s %s\n", s.ID, s.Emoji, s.Name)
			}
			return nil
		},
	}
}

func joinCmd() *cobra.Command {
	var nickname string
	cmd := &cobra.Command{
		Use:   "join <room-id>",
		Short: "Join a room, tail the feed and trigger cues by number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			api := &client.RoomAPI{BaseURL: serverURL}
			room, err := api.GetRoom(ctx, args[0])
			if err != nil {
				return err
			}

			sess, err := client.NewSession(client.Options{
				BaseURL:  wsURL(serverURL),
				RoomID:   room.ID,
				Nickname: nickname,
				OnEvent: func(ev client.Event) {
					if s, ok := client.LookupSound(ev.Type); ok {
						fmt.Printf("%s  %s played %s\n", s.Emoji, ev.Nickname, s.Name)
						return
					}
					fmt.Printf("🔊  %s played sound #%d\n", ev.Nickname, ev.Type)
				},
				OnState: func(st client.State) {
					fmt.Printf("-- %s\n", st)
				},
			})
			if err != nil {
				return err
			}
			if err := sess.Join(ctx); err != nil {
				return err
			}
			defer sess.Leave()

			fmt.Printf("joined %q as %s; type a sound number (q to quit)\n", room.Name, nickname)

			lines := make(chan string)
			go func() {
				sc := bufio.NewScanner(os.Stdin)
				for sc.Scan() {
					lines <- strings.TrimSpace(sc.Text())
				}
				close(lines)
			}()

			for {
				select {
				case <-ctx.Done():
					return nil
				case line, ok := <-lines:
					if !ok || line == "q" {
						return nil
					}
					if line == "" {
						continue
					}
					n, err := strconv.Atoi(line)
					if err != nil {
						fmt.Println("enter a sound number, or q to quit")
						continue
					}
					if err := sess.Send(n); err != nil {
						fmt.Println("not sent:", err)
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "guest", "display name")
	return cmd
}
