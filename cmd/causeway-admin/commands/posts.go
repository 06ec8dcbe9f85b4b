package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/causewayhq/causeway/pkg/client"
)

func postsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage content posts",
	}
	cmd.AddCommand(
		postsListCmd(),
		postsGetCmd(),
		postsAddCmd(),
		postsUpdateCmd(),
		postsRemoveCmd(),
		postsPublishCmd(),
	)
	return cmd
}

func postsListCmd() *cobra.Command {
	var opts client.PostListOptions
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Status = client.PostStatus(status)
			page, err := api.Posts.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return emit(page, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tTAGS\tPUBLISHED")
				for _, p := range page.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						p.ID, truncate(p.Title, 40), p.Status,
						truncate(strings.Join(p.Tags, ", "), 30),
						formatWhenPtr(p.PublishedAt))
				}
				fmt.Fprintf(w, "\t\t\t\t(%d of %d)\n", len(page.Items), page.Total)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (draft|published|archived)")
	addPageFlags(cmd, &opts.ListOptions)
	return cmd
}

func postsGetCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := api.Posts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(p, func(w io.Writer) {
				fmt.Fprintf(w, "ID:\t%s\n", p.ID)
				fmt.Fprintf(w, "Title:\t%s\n", p.Title)
				fmt.Fprintf(w, "Slug:\t%s\n", p.Slug)
				fmt.Fprintf(w, "Status:\t%s\n", p.Status)
				fmt.Fprintf(w, "Author:\t%s\n", p.AuthorID)
				fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(p.Tags, ", "))
				fmt.Fprintf(w, "Published:\t%s\n", formatWhenPtr(p.PublishedAt))
				if full {
					fmt.Fprintf(w, "\n%s\n", p.Body)
				} else {
					fmt.Fprintf(w, "Excerpt:\t%s\n", truncate(p.Excerpt, 120))
				}
			})
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print the whole body")
	return cmd
}

// readBody resolves the post body: a literal flag value, a file path, or
// stdin when the path is "-".
func readBody(body, bodyFile string) (string, error) {
	if body != "" {
		return body, nil
	}
	if bodyFile == "" {
		return "", fmt.Errorf("provide --body or --body-file")
	}
	if bodyFile == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(bodyFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func postParamFlags(cmd *cobra.Command, p *client.PostParams, bodyFile *string) {
	cmd.Flags().StringVar(&p.Title, "title", "", "post title")
	cmd.Flags().StringVar(&p.Slug, "slug", "", "URL slug (derived from the title when empty)")
	cmd.Flags().StringVar(&p.Body, "body", "", "post body")
	cmd.Flags().StringVar(bodyFile, "body-file", "", "read the body from a file, - for stdin")
	cmd.Flags().StringVar(&p.Excerpt, "excerpt", "", "short summary")
	cmd.Flags().StringSliceVar(&p.Tags, "tags", nil, "tags (repeat or comma-separate)")
}

func postsAddCmd() *cobra.Command {
	var params client.PostParams
	var bodyFile string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a draft post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := readBody(params.Body, bodyFile)
			if err != nil {
				return err
			}
			params.Body = body
			p, err := api.Posts.Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Printf("Created draft %s (%s)\n", p.ID, p.Slug)
			return nil
		},
	}
	postParamFlags(cmd, &params, &bodyFile)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func postsUpdateCmd() *cobra.Command {
	var params client.PostParams
	var bodyFile string
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Replace a post's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(params.Body, bodyFile)
			if err != nil {
				return err
			}
			params.Body = body
			p, err := api.Posts.Update(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			fmt.Printf("Updated post %s\n", p.ID)
			return nil
		},
	}
	postParamFlags(cmd, &params, &bodyFile)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func postsRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete post %s without --yes", args[0])
			}
			if err := api.Posts.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted post %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func postsPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish [id]",
		Short: "Publish a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := api.Posts.Publish(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Published %s at %s\n", p.Slug, formatWhenPtr(p.PublishedAt))
			return nil
		},
	}
}
