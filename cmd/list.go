package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"resumeftp/internal/models"
	"resumeftp/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List a remote file or directory",
	Long: `List a remote path on the FTP server.

For a directory the entries inside it are printed; for a file the single entry
describing it. The reported size is what a resumed transfer starts from.`,
	Example: `  # List the login directory
  resumeftp list

  # Check the remote size of a partial upload
  resumeftp list /incoming/backup.tar

  # List on a different server
  resumeftp list /pub --host ftp.example.com`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runList(cmd, args)
	},
}

func runList(cmd *cobra.Command, args []string) {
	remotePath := ""
	if len(args) == 1 {
		remotePath = args[0]
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if isVerbose(cmd) {
		cmd.Printf("Listing %q on %s\n", remotePath, getHost(cmd))
	}

	session, err := connect(ctx, cmd)
	if err != nil {
		utils.PrintError(err, "list")
		return
	}
	defer session.Close()

	entries, err := session.List(remotePath)
	if err != nil {
		utils.PrintError(err, "list")
		return
	}

	if err := utils.PrintJSON(newListResult(getHost(cmd), remotePath, entries)); err != nil {
		utils.PrintError(err, "list")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Listed %d entries\n", len(entries))
	}
}

func newListResult(host, remotePath string, entries []models.RemoteFile) models.ListResult {
	result := models.ListResult{
		Host:          host,
		Path:          remotePath,
		Items:         entries,
		OperationTime: utils.FormatTime(time.Now()),
	}
	if result.Items == nil {
		result.Items = []models.RemoteFile{}
	}
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		result.TotalFiles++
		result.TotalSizeBytes += entry.Size
	}
	result.TotalSizeHuman = utils.FormatBytes(result.TotalSizeBytes)
	return result
}

func init() {
	listCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
}
