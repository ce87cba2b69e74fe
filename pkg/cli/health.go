package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check if the stubd server is healthy and reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewControlClient(controlURL)

		info, err := client.Health()
		if err != nil {
			if jsonOutput {
				data, _ := json.MarshalIndent(map[string]string{
					"status": "unhealthy",
					"url":    controlURL,
					"error":  err.Error(),
				}, "", "  ")
				fmt.Println(string(data))
			} else {
				fmt.Fprintf(os.Stderr, "unhealthy: %v\n", err)
			}
			return errors.New("server is not healthy")
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(info, "", "  ")
			fmt.Println(string(data))
		} else {
			fmt.Printf("healthy (version %s, %d stubs, %d recorded requests)\n",
				info.Version, info.Stubs, info.Requests)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
