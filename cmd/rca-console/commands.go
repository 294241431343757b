package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codespire/rca-console/internal/engine"
	"github.com/codespire/rca-console/internal/models"
	"github.com/codespire/rca-console/internal/services"
)

func newSearchCommand(opts *rootOptions) *cobra.Command {
	var ticket models.Ticket
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find playbooks for a ticket's short description and description",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			if ticket.ID == "" {
				ticket.ID = "cli"
			}
			view, err := deps.console.Search(cmd.Context(), ticket)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd, view)
			}
			printView(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().StringVar(&ticket.ID, "ticket", "", "ticket id")
	cmd.Flags().StringVar(&ticket.ShortDescription, "short", "", "ticket short description")
	cmd.Flags().StringVar(&ticket.Description, "description", "", "ticket description")
	return cmd
}

func newGuidanceCommand(opts *rootOptions) *cobra.Command {
	var (
		playbookIDs []string
		question    string
	)
	cmd := &cobra.Command{
		Use:   "guidance",
		Short: "Ask for guidance across one or more playbooks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			reply, err := deps.console.GuidanceFor(cmd.Context(), playbookIDs, question)
			if errors.Is(err, engine.ErrNoGuidanceFound) && !errors.Is(err, engine.ErrTransportFailure) {
				fmt.Fprintln(cmd.OutOrStdout(), "No guidance found.")
				return nil
			}
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd, reply)
			}
			printGuidance(cmd.OutOrStdout(), reply)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&playbookIDs, "playbook", nil, "playbook id (repeatable)")
	cmd.Flags().StringVar(&question, "question", "", "guidance question")
	_ = cmd.MarkFlagRequired("playbook")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

func newPlaybooksCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playbooks",
		Short: "Browse and edit the playbook catalog",
	}

	var q models.CatalogQuery
	var sortField, order, priority string
	list := &cobra.Command{
		Use:   "list",
		Short: "List playbooks with optional filter, sort and paging",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			q.Sort = models.SortField(strings.ToLower(sortField))
			q.Descending = strings.EqualFold(order, "desc")
			q.Priority = services.ParsePriority(priority)
			page, err := deps.console.ListCatalog(cmd.Context(), q)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd, page)
			}
			printCatalog(cmd.OutOrStdout(), page)
			return nil
		},
	}
	list.Flags().StringVar(&q.Text, "query", "", "free-text filter")
	list.Flags().StringVar(&q.Tag, "tag", "", "tag filter")
	list.Flags().StringVar(&priority, "priority", "", "priority filter")
	list.Flags().StringVar(&sortField, "sort", "", "sort by title, priority, usage or updated")
	list.Flags().StringVar(&order, "order", "asc", "asc or desc")
	list.Flags().IntVar(&q.Page, "page", 1, "page number")
	list.Flags().IntVar(&q.PageSize, "page-size", 20, "page size")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one playbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			pb, err := deps.console.GetPlaybook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd, pb)
			}
			printPlaybook(cmd.OutOrStdout(), pb)
			return nil
		},
	}

	var file string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a playbook from a JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pb, err := readPlaybook(file)
			if err != nil {
				return err
			}
			deps, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			created, err := deps.console.CreatePlaybook(cmd.Context(), pb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created playbook %s\n", created.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&file, "file", "f", "", "playbook JSON file (- for stdin)")
	_ = create.MarkFlagRequired("file")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a playbook from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := readPlaybook(file)
			if err != nil {
				return err
			}
			deps, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			if _, err := deps.console.UpdatePlaybook(cmd.Context(), args[0], pb); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated playbook %s\n", args[0])
			return nil
		},
	}
	update.Flags().StringVarP(&file, "file", "f", "", "playbook JSON file (- for stdin)")
	_ = update.MarkFlagRequired("file")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a playbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := deps.console.DeletePlaybook(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted playbook %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, get, create, update, del)
	return cmd
}

func readPlaybook(path string) (models.Playbook, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return models.Playbook{}, fmt.Errorf("read playbook: %w", err)
	}
	var pb models.Playbook
	if err := json.Unmarshal(data, &pb); err != nil {
		return models.Playbook{}, fmt.Errorf("parse playbook: %w", err)
	}
	return pb, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
