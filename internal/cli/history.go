package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdwatch/internal/history"
)

var (
	historyLimit  int
	historySearch string
	historyJSON   bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().StringVarP(&historySearch, "search", "s", "", "Only show commands containing this substring")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past verification decisions",
	Long:  "Queries the SQLite verification history, newest first.",
	RunE:  runHistory,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show decision counts over the whole history",
	RunE:  runHistoryStats,
}

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.HistoryDBPath)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	var records []history.Record
	if historySearch != "" {
		records, err = store.Search(ctx, historySearch, historyLimit)
	} else {
		records, err = store.Recent(ctx, historyLimit)
	}
	if err != nil {
		return err
	}

	if historyJSON {
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Print(history.FormatRecords(records))
	return nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
