package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stubkit/stubd/pkg/payload"
)

var (
	logsMethod string
	logsPath   string
	logsLimit  int
	logsClear  bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the recorded request log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewControlClient(controlURL)

		if logsClear {
			if err := client.ClearRequests(); err != nil {
				return err
			}
			fmt.Println("request log cleared")
			return nil
		}

		requests, err := client.ListRequests()
		if err != nil {
			return err
		}

		filtered := make([]payload.RequestView, 0, len(requests))
		for _, r := range requests {
			if logsMethod != "" && !strings.EqualFold(r.Method, logsMethod) {
				continue
			}
			if logsPath != "" && !strings.Contains(r.Path, logsPath) {
				continue
			}
			filtered = append(filtered, r)
		}
		if logsLimit > 0 && len(filtered) > logsLimit {
			filtered = filtered[len(filtered)-logsLimit:]
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(filtered, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		if len(filtered) == 0 {
			fmt.Println("no requests recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tMETHOD\tPATH\tHOST")
		for _, r := range filtered {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Timestamp.Format("15:04:05.000"), r.Method, r.Path, r.Host)
		}
		return w.Flush()
	},
}

func init() {
	logsCmd.Flags().StringVarP(&logsMethod, "method", "m", "", "Filter by HTTP method")
	logsCmd.Flags().StringVarP(&logsPath, "path", "p", "", "Filter by path (substring match)")
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 20, "Number of entries to show")
	logsCmd.Flags().BoolVar(&logsClear, "clear", false, "Clear the request log")
	rootCmd.AddCommand(logsCmd)
}
