package main

import (
	"fmt"
	"os"
	"path"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vijayasainandipati/Agri-Ai-2/internal/actions"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/s3storage"
)

var documentOut string

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Browse documents attached to scheme applications",
}

var documentsListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List uploaded documents of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openObjects()
		if err != nil {
			return err
		}
		objects, err := client.ListFiles(cmd.Context(), actions.DocumentPrefix(args[0]))
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tSIZE\tMODIFIED")
		for _, obj := range objects {
			fmt.Fprintf(w, "%s\t%d\t%s\n", obj.Key, obj.Size, obj.LastModified.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var documentsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Download a document to a local file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openObjects()
		if err != nil {
			return err
		}
		data, err := client.DownloadFile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", args[0], err)
		}

		out := documentOut
		if out == "" {
			out = path.Base(args[0])
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", out, len(data))
		return nil
	},
}

func init() {
	documentsGetCmd.Flags().StringVarP(&documentOut, "output", "o", "", "Output file (default: object name)")
	documentsCmd.AddCommand(documentsListCmd, documentsGetCmd)
}

func openObjects() (*s3storage.Client, error) {
	if !appCfg.S3Enabled() {
		return nil, fmt.Errorf("s3 is not configured (s3.endpoint and s3.bucket are required)")
	}
	return s3storage.New(appCfg.S3)
}
