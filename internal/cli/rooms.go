package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List active rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := client.Rooms()
			if err != nil {
				return err
			}

			if cfg.Output == "json" {
				return json.NewEncoder(os.Stdout).Encode(rooms)
			}

			if len(rooms) == 0 {
				fmt.Println("no active rooms")
				return nil
			}
			for _, room := range rooms {
				fmt.Printf("%d\t%s\t%d player(s)\n", room.RoomID, room.Status, len(room.Players))
			}
			return nil
		},
	}
}
