package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stubkit/stubd/pkg/payload"
)

var (
	assertMethod string
	assertPath   string
	assertTimes  string
)

var assertCmd = &cobra.Command{
	Use:   "assert",
	Short: "Assert on the recorded request history",
	Long: `Assert counts the recorded requests matching the given criteria and checks
the count against --times. The full criteria wire format is accepted on
stdin as a JSON assertion document when no flags are given.

Exits non-zero when the assertion fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var p payload.AssertionPayload

		if assertMethod == "" && assertPath == "" && assertTimes == "" {
			if err := json.NewDecoder(os.Stdin).Decode(&p); err != nil {
				return fmt.Errorf("failed to read assertion from stdin: %w", err)
			}
		} else {
			if assertMethod != "" {
				p.Rules.Method, _ = json.Marshal(assertMethod)
			}
			if assertPath != "" {
				p.Rules.Path, _ = json.Marshal(assertPath)
			}
			if assertTimes != "" {
				p.Times = json.RawMessage(assertTimes)
			}
		}

		client := NewControlClient(controlURL)
		result, err := client.Assert(p)
		if err != nil {
			return err
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(data))
		} else if result.Passed {
			fmt.Printf("passed (%d matching requests)\n", result.Count)
		} else {
			fmt.Fprintf(os.Stderr, "failed (%d matching requests)\n", result.Count)
		}

		if !result.Passed {
			return errors.New("assertion failed")
		}
		return nil
	},
}

func init() {
	assertCmd.Flags().StringVarP(&assertMethod, "method", "m", "", "Match requests by HTTP method")
	assertCmd.Flags().StringVarP(&assertPath, "path", "p", "", "Match requests by exact path")
	assertCmd.Flags().StringVar(&assertTimes, "times", "", `Count predicate as JSON, e.g. '3' or '{"$gte": 2}'`)
	rootCmd.AddCommand(assertCmd)
}
