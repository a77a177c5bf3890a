package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"notionsync/internal/notion"
	"notionsync/internal/schema"
)

func newTodoistCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "todoist",
		Short: "Run one two-way reconciliation between Notion and Todoist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, a, jobTodoist)
		},
	}
}

func newPostgresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "postgres",
		Short: "Mirror the Notion task database into a Postgres table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, a, jobPostgres)
		},
	}
}

func runOnce(cmd *cobra.Command, a *app, job string) error {
	ctx := cmd.Context()
	runner, cleanup, err := newRunner(ctx, a.cfg, []string{job}, true)
	if err != nil {
		return err
	}
	defer cleanup.Close()

	rec, err := runner.Run(ctx, job)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s run %s %s: %s\n", job, rec.ID, rec.Status, rec.Stats)
	return nil
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the DDL derived from the Notion task database without executing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateSchema(); err != nil {
				return err
			}
			client := notion.NewClient(a.cfg.NotionBaseURL, a.cfg.NotionToken)
			source := notion.NewCollectionSource(client, a.cfg.NotionTasksView)
			stmts, _, err := schema.NewProjector(source, nil, a.cfg.PostgresTable).DDL(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(stmts, ";\n\n")+";")
			return nil
		},
	}
}
