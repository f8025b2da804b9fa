package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"resumeftp/internal/models"
	"resumeftp/internal/transfer"
	"resumeftp/pkg/utils"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir [path]",
	Short: "Create a remote directory and its missing parents",
	Long: `Create a remote directory on the FTP server.

Every missing ancestor is created in order, the same way an upload prepares
its target directory. Existing directories are left alone.`,
	Example: `  # Create a nested directory
  resumeftp mkdir /backups/2024/06

  # Verbose output
  resumeftp mkdir /incoming/new --verbose`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMkdir(cmd, args)
	},
}

func runMkdir(cmd *cobra.Command, args []string) {
	dir := args[0]

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	session, err := connect(ctx, cmd)
	if err != nil {
		utils.PrintError(err, "mkdir")
		return
	}
	defer session.Close()

	if isVerbose(cmd) {
		cmd.Printf("Creating %s on %s\n", dir, getHost(cmd))
	}

	result, err := transfer.NewDirectoryCreator(session, nil).Ensure(directoryTarget(dir))
	if err != nil {
		utils.PrintError(err, "mkdir")
		return
	}

	out := models.DirectoryResult{
		Host:          getHost(cmd),
		Path:          dir,
		Segments:      nonNil(result.Segments),
		Created:       nonNil(result.Created),
		OperationTime: utils.FormatTime(time.Now()),
	}
	if err := utils.PrintJSON(out); err != nil {
		utils.PrintError(err, "mkdir")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Created %d directories\n", len(result.Created))
	}
}

// directoryTarget turns a directory path into one whose parent is that
// directory, so the walk covers the directory itself.
func directoryTarget(dir string) string {
	if strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func init() {
	mkdirCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
}
