package cmd

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"

	"resumeftp/pkg/utils"
)

var downloadCmd = &cobra.Command{
	Use:   "download [remote] [local]",
	Short: "Download a remote file, resuming a partial local copy",
	Long: `Download a file from the FTP server.

If the local file already exists and is shorter than the remote file, the
download continues from the local length instead of starting over. A local file
that is already as large as the remote one is left untouched.

If no local path is given, the file is saved under its remote name in the
current directory.`,
	Example: `  # Download into the current directory
  resumeftp download /pub/images/disk.iso

  # Download to a specific path, resuming if it is partial
  resumeftp download /pub/images/disk.iso /tmp/disk.iso

  # Download from a different server without the prompt
  resumeftp download /pub/file.bin --host ftp.example.com --confirm

  # Verbose download with metrics
  resumeftp download /pub/file.bin --verbose --metrics-addr :9100`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		runDownload(cmd, args)
	},
}

func runDownload(cmd *cobra.Command, args []string) {
	remotePath := args[0]
	localPath := path.Base(remotePath)
	if len(args) == 2 {
		localPath = args[1]
	}
	confirm, _ := cmd.Flags().GetBool("confirm")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	if !confirm {
		fmt.Printf("Download operation summary:\n")
		fmt.Printf("  Host: %s\n", getHost(cmd))
		fmt.Printf("  Remote: %s\n", remotePath)
		fmt.Printf("  Local: %s\n", localPath)

		fmt.Print("Continue with download? (y/N): ")
		var response string
		_, err := fmt.Scanln(&response)
		if err != nil {
			utils.PrintError(err, "download")
			return
		}
		if !isConfirmation(response) {
			fmt.Println("Download cancelled.")
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
		utils.PrintError(err, "download")
		return
	}
	defer session.Close()

	if isVerbose(cmd) {
		cmd.Printf("Starting download operation...\n")
		cmd.Printf("  Remote: %s\n", remotePath)
		cmd.Printf("  Local: %s\n", localPath)
	}

	p, err := newEngine(session).Download(ctx, remotePath, localPath)
	if err != nil {
		utils.PrintError(err, "download")
		return
	}

	if !noProgress {
		watchProgress(os.Stderr, p, "Downloading")
	}
	<-p.Done()

	if err := utils.PrintJSON(newTransferResult(getHost(cmd), p)); err != nil {
		utils.PrintError(err, "download")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Download finished: %s\n", p.Outcome())
	}
}

func init() {
	downloadCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	downloadCmd.Flags().Bool("no-progress", false, "Do not render a progress bar")
	downloadCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the operation (default: 1 hour)")
}
