package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var presenceCmd = &cobra.Command{
	Use:   "presence",
	Short: "Show who is currently online",
	Long: `Query a running Parlor server for its current presence registry.

Examples:
  parlorctl presence
  parlorctl presence --server http://chat.example.com`,
	Run: presenceHandler,
}

type presenceReply struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

func presenceHandler(cmd *cobra.Command, args []string) {
	reply, err := fetchJSON[presenceReply](serverURL + "/api/presence")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%d online\n", reply.Count)
	for _, name := range reply.Names {
		fmt.Printf("  %s\n", name)
	}
}

func init() {
	rootCmd.AddCommand(presenceCmd)
}
