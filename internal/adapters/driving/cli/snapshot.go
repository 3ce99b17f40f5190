package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Persist or restore the index",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current index to the snapshot store",
	RunE:  runSnapshotSave,
}

var snapshotLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Restore the index from the snapshot store",
	RunE:  runSnapshotLoad,
}

func init() {
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotLoadCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotSave(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if err := indexService.Snapshot(cmd.Context()); err != nil {
		return err
	}

	stats := indexService.Stats()
	cmd.Printf("Saved snapshot: %d documents, %d chunks\n", stats.TotalDocuments, stats.TotalChunks)
	return nil
}

func runSnapshotLoad(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	ok, err := indexService.Restore(cmd.Context())
	if err != nil {
		return err
	}
	if !ok {
		cmd.Println("No snapshot found.")
		return nil
	}

	stats := indexService.Stats()
	cmd.Printf("Restored snapshot: %d documents, %d chunks\n", stats.TotalDocuments, stats.TotalChunks)
	return nil
}
