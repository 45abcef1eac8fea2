package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Health(); err != nil {
				return fmt.Errorf("server unhealthy: %w", err)
			}
			fmt.Println("ok")
			return nil
		},
	}
}
