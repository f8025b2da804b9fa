package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"resumeftp/pkg/utils"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [local] [remote]",
	Short: "Upload a local file, resuming a partial remote copy",
	Long: `Upload a file to the FTP server.

Missing remote directories are created first. With --resume (the default) the
remote file is looked up and, if the server already holds part of it, only the
remaining bytes are sent. Use --resume=false to overwrite from the start.

If no remote path is given, the file is uploaded under its local name into the
login directory.`,
	Example: `  # Upload into the login directory
  resumeftp upload backup.tar

  # Upload into a nested directory, creating it if needed
  resumeftp upload backup.tar /backups/2024/06/backup.tar

  # Start over instead of resuming
  resumeftp upload backup.tar /backups/backup.tar --resume=false --confirm

  # Verbose upload
  resumeftp upload backup.tar --verbose`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		runUpload(cmd, args)
	},
}

func runUpload(cmd *cobra.Command, args []string) {
	localPath := args[0]
	remotePath := filepath.Base(localPath)
	if len(args) == 2 {
		remotePath = args[1]
	}
	resume, _ := cmd.Flags().GetBool("resume")
	confirm, _ := cmd.Flags().GetBool("confirm")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	if !isRegularFile(localPath) {
		utils.PrintError(fmt.Errorf("local path %s is not a regular file", localPath), "upload")
		return
	}

	if !confirm {
		fmt.Printf("Upload operation summary:\n")
		fmt.Printf("  Host: %s\n", getHost(cmd))
		fmt.Printf("  Local: %s\n", localPath)
		fmt.Printf("  Remote: %s\n", remotePath)
		fmt.Printf("  Resume: %t\n", resume)

		fmt.Print("Continue with upload? (y/N): ")
		var response string
		_, err := fmt.Scanln(&response)
		if err != nil {
			utils.PrintError(err, "upload")
			return
		}
		if !isConfirmation(response) {
			fmt.Println("Upload cancelled.")
			return
		}
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	stopMetrics := serveMetrics(cmd)
	defer stopMetrics()

	session, err := connect(ctx, cmd)
	if err != nil {
		utils.PrintError(err, "upload")
		return
	}
	defer session.Close()

	engine := newEngine(session)

	var knownRemoteSize int64
	if resume {
		size, ok, err := engine.RemoteSize(remotePath)
		if err != nil {
			utils.PrintError(err, "upload")
			return
		}
		if ok {
			knownRemoteSize = size
		}
	}

	if isVerbose(cmd) {
		cmd.Printf("Starting upload operation...\n")
		cmd.Printf("  Local: %s\n", localPath)
		cmd.Printf("  Remote: %s\n", remotePath)
		cmd.Printf("  Remote size: %s\n", utils.FormatBytes(knownRemoteSize))
	}

	p, err := engine.Upload(ctx, remotePath, localPath, knownRemoteSize)
	if err != nil {
		utils.PrintError(err, "upload")
		return
	}

	if !noProgress {
		watchProgress(os.Stderr, p, "Uploading")
	}
	<-p.Done()

	if err := utils.PrintJSON(newTransferResult(getHost(cmd), p)); err != nil {
		utils.PrintError(err, "upload")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Upload finished: %s\n", p.Outcome())
	}
}

func isRegularFile(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}

func init() {
	uploadCmd.Flags().Bool("resume", true, "Continue from the size already on the server")
	uploadCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	uploadCmd.Flags().Bool("no-progress", false, "Do not render a progress bar")
	uploadCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the operation (default: 1 hour)")
}
