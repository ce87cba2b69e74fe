package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listClear bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered stubs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewControlClient(controlURL)

		if listClear {
			if err := client.ClearStubs(); err != nil {
				return err
			}
			fmt.Println("stubs cleared")
			return nil
		}

		stubs, err := client.ListStubs()
		if err != nil {
			return err
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(stubs, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		if len(stubs) == 0 {
			fmt.Println("no stubs registered")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tRULES\tCALLS\tMAX")
		for _, s := range stubs {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", s.ID, len(s.Rules), s.CallCount, s.MaxCalls)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().BoolVar(&listClear, "clear", false, "Remove all registered stubs")
	rootCmd.AddCommand(listCmd)
}
