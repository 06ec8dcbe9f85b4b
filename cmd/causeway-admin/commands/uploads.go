package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/causewayhq/causeway/pkg/client"
)

func uploadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uploads",
		Short: "Manage uploaded files",
	}
	cmd.AddCommand(
		uploadsListCmd(),
		uploadsPutCmd(),
		uploadsGetCmd(),
		uploadsRemoveCmd(),
	)
	return cmd
}

func uploadsListCmd() *cobra.Command {
	var opts client.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := api.Uploads.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return emit(page, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tSTORED\tTYPE\tSIZE\tUPLOADED")
				for _, u := range page.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
						u.ID, truncate(u.Name, 40), u.StoredName,
						u.ContentType, u.SizeBytes, formatWhen(u.CreatedAt))
				}
				fmt.Fprintf(w, "\t\t\t\t\t(%d of %d)\n", len(page.Items), page.Total)
			})
		},
	}
	addPageFlags(cmd, &opts)
	return cmd
}

func uploadsPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put [file]",
		Short: "Upload a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			u, err := api.Uploads.Upload(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			fmt.Printf("Uploaded %s as %s (%d bytes, sha256 %s)\n", u.Name, u.StoredName, u.SizeBytes, u.SHA256)
			return nil
		},
	}
}

func uploadsGetCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "get [stored-name]",
		Short: "Download a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, contentType, err := api.Uploads.Download(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer body.Close()

			var out io.Writer = os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			n, err := io.Copy(out, body)
			if err != nil {
				return err
			}
			if outPath != "" {
				fmt.Printf("Wrote %d bytes (%s) to %s\n", n, contentType, outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func uploadsRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm [id-or-stored-name]",
		Short: "Delete an upload (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete upload %s without --yes", args[0])
			}
			if err := api.Uploads.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted upload %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
