package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mhollis/bounce/internal/protocol"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Connect to the server and stream events to stdout",
		Long: `watch opens a websocket connection and prints every server event
as it arrives. Useful for observing room activity and game state broadcasts.
Interrupt with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wsURL, err := client.WebSocketURL()
			if err != nil {
				return err
			}

			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			if err != nil {
				return fmt.Errorf("connect %s: %w", wsURL, err)
			}
			defer func() { _ = conn.Close() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			done := make(chan error, 1)
			go func() {
				for {
					_, raw, err := conn.ReadMessage()
					if err != nil {
						done <- err
						return
					}
					env, err := protocol.Decode(raw)
					if err != nil {
						continue
					}
					if cfg.Output == "json" {
						fmt.Println(string(raw))
					} else {
						fmt.Printf("%s\t%s\n", env.Event, string(env.Data))
					}
				}
			}()

			select {
			case <-sigCh:
				return nil
			case err := <-done:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return err
			}
		},
	}
}
