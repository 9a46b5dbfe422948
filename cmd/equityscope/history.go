package main

import (
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved question/answer exchanges",
	RunE:  runHistory,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [chat-id]",
	Short: "Delete one saved exchange",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := ensureApp()
	if err != nil {
		return err
	}
	defer closeApp()

	records, err := a.HistoryService.ListChats()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		cmd.Println("No chat history.")
		return nil
	}

	for _, record := range records {
		cmd.Printf("[%s] %s\n", record.ID, record.CreatedAt.Format("2006-01-02 15:04"))
		cmd.Printf("  Q: %s\n", record.Query)
		cmd.Printf("  A: %s\n\n", truncateAnswer(record.Response))
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	a, err := ensureApp()
	if err != nil {
		return err
	}
	defer closeApp()

	if err := a.HistoryService.DeleteChat(args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted chat %s\n", args[0])
	return nil
}

func truncateAnswer(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
