package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Rogue-Bear-Innovations/websites/internal/client"
	"github.com/Rogue-Bear-Innovations/websites/internal/models"
)

type options struct {
	server string
	userID string
}

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "websitesctl",
		Short:         "Manage saved websites",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("WEBSITES_SERVER", "http://localhost:1323"), "API base URL")
	root.PersistentFlags().StringVar(&opts.userID, "user", envOr("WEBSITES_USER", "user-1"), "owner of the websites")

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newRemoveCmd(opts),
		newStatusCmd(opts),
	)
	return root
}

func (o *options) board() *client.Board {
	return client.NewBoard(client.New(o.server), o.userID)
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List websites, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := opts.board()
			if err := b.Refresh(cmd.Context()); err != nil {
				return err
			}
			printWebsites(cmd.OutOrStdout(), b.Snapshot().Websites)
			return nil
		},
	}
}

func newAddCmd(opts *options) *cobra.Command {
	var (
		note     string
		tags     []string
		isPublic bool
	)
	cmd := &cobra.Command{
		Use:   "add TITLE URL",
		Short: "Save a website",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := opts.board()
			err := b.Add(cmd.Context(), models.CreateWebsiteReq{
				Title:    args[0],
				URL:      args[1],
				Note:     note,
				Tags:     tags,
				IsPublic: models.Truthy(isPublic),
			})
			if err != nil {
				return err
			}
			printWebsites(cmd.OutOrStdout(), b.Snapshot().Websites)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag, repeatable")
	cmd.Flags().BoolVar(&isPublic, "public", false, "mark the website public")
	return cmd
}

func newEditCmd(opts *options) *cobra.Command {
	var (
		title, rawURL, note string
		tags                []string
		isPublic            bool
	)
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the given fields of a website",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.UpdateWebsiteReq{}
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("url") {
				req.URL = &rawURL
			}
			if flags.Changed("note") {
				req.Note = &note
			}
			if flags.Changed("tag") {
				req.Tags = &tags
			}
			if flags.Changed("public") {
				req.IsPublic = models.BoolPtr(isPublic)
			}

			b := opts.board()
			if err := b.Edit(cmd.Context(), args[0], req); err != nil {
				return err
			}
			printWebsites(cmd.OutOrStdout(), b.Snapshot().Websites)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&rawURL, "url", "", "new URL")
	cmd.Flags().StringVar(&note, "note", "", "new note")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replacement tags, repeatable")
	cmd.Flags().BoolVar(&isPublic, "public", false, "visibility")
	return cmd
}

func newRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a website",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := opts.board()
			if err := b.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := b.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Website deleted successfully")
			return nil
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the server's database connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := client.New(opts.server).Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) %s/%s collections=%s\n",
				info.State, info.Backend, info.Host, info.Name, strings.Join(info.Collections, ","))
			return nil
		},
	}
}

func printWebsites(out io.Writer, websites []models.Website) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tURL\tTAGS\tPUBLIC")
	for _, w := range websites {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", w.ID, w.Title, w.URL, strings.Join(w.Tags, ","), w.IsPublic)
	}
	_ = tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
