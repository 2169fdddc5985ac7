package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/parlorchat/parlor/internal/domain"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Fetch recent messages from the server",
	Long: `Fetch the most recent messages from a running Parlor server and
print them oldest first.

Examples:
  parlorctl history                       # Last 50 messages from localhost
  parlorctl history --limit 10            # Just the last 10
  parlorctl history --format json         # Machine-readable output
  parlorctl history --server http://chat.example.com`,
	Run: historyHandler,
}

func historyHandler(cmd *cobra.Command, args []string) {
	url := fmt.Sprintf("%s/api/messages?limit=%d", serverURL, historyLimit)
	messages, err := fetchJSON[[]*domain.Message](url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if historyFormat == "json" {
		out, err := json.MarshalIndent(messages, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	for _, msg := range messages {
		fmt.Printf("%s  %-16s %s\n", msg.CreatedAt.Format(time.RFC3339), msg.AuthorName, msg.Text)
	}
}

// fetchJSON gets a URL and decodes the response body into T.
func fetchJSON[T any](url string) (T, error) {
	var out T

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return out, fmt.Errorf("could not reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("server returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("could not decode response: %w", err)
	}
	return out, nil
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum number of messages to fetch")
	historyCmd.Flags().StringVar(&historyFormat, "format", "table", "Output format: table or json")
	rootCmd.AddCommand(historyCmd)
}
