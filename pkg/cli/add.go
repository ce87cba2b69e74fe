package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stubkit/stubd/pkg/config"
	"github.com/stubkit/stubd/pkg/payload"
)

var addFile string

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Register stubs from a definition file or stdin",
	Long: `Register stubs on a running server. The definition is read from the given
file (YAML or JSON) or from stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var stubs []payload.StubPayload

		switch {
		case len(args) == 1:
			loaded, err := config.LoadStubFile(args[0])
			if err != nil {
				return err
			}
			stubs = loaded
		case addFile != "":
			loaded, err := config.LoadStubFile(addFile)
			if err != nil {
				return err
			}
			stubs = loaded
		default:
			var single payload.StubPayload
			if err := json.NewDecoder(os.Stdin).Decode(&single); err != nil {
				return fmt.Errorf("failed to read stub from stdin: %w", err)
			}
			stubs = []payload.StubPayload{single}
		}

		client := NewControlClient(controlURL)
		views := make([]payload.StubView, 0, len(stubs))
		for _, p := range stubs {
			view, err := client.RegisterStub(p)
			if err != nil {
				return err
			}
			views = append(views, *view)
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(views, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		for _, view := range views {
			fmt.Printf("registered %s\n", view.ID)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "Stub definition file (YAML or JSON)")
	rootCmd.AddCommand(addCmd)
}
