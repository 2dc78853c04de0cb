// Package commands registers orcactl's subcommands against cli.RootCmd.
// Each subcommand opens a Service via cli.Service() and calls straight
// into the engine's tool surface, printing the resulting envelope.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vantage-labs/orcaflow/internal/cli"
	"github.com/vantage-labs/orcaflow/internal/tools"
)

func init() {
	cli.RootCmd.AddCommand(createCmd(), getCmd(), setStatusCmd(), nextCmd(), blockedCmd(), depCmd(), historyCmd())
}

func createCmd() *cobra.Command {
	var name, slug, projectID, featureID, priority string
	cmd := &cobra.Command{
		Use:   "create <project|feature|task>",
		Short: "Create a project, feature, or task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.Service()
			if err != nil {
				return err
			}
			p := tools.ManageContainerParams{
				Op: "create", ContainerType: args[0], Name: name, Slug: slug, Priority: priority,
			}
			if projectID != "" {
				p.ProjectID = &projectID
			}
			if featureID != "" {
				p.FeatureID = &featureID
			}
			env := svc.ManageContainer(context.Background(), p)
			return cli.PrintEnvelope(env)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name or title")
	cmd.Flags().StringVar(&slug, "slug", "", "short human-facing slug")
	cmd.Flags().StringVar(&projectID, "project", "", "parent project id (features only)")
	cmd.Flags().StringVar(&featureID, "feature", "", "parent feature id (tasks only)")
	cmd.Flags().StringVar(&priority, "priority", "", "HIGH, MEDIUM, or LOW")
	return cmd
}

func getCmd() *cobra.Command {
	var containerType string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a project, feature, or task by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.Service()
			if err != nil {
				return err
			}
			env := svc.QueryContainer(context.Background(), tools.QueryContainerParams{
				Op: "get", ContainerType: containerType, ID: args[0],
			})
			return cli.PrintEnvelope(env)
		},
	}
	cmd.Flags().StringVar(&containerType, "type", "task", "project, feature, or task")
	return cmd
}

func setStatusCmd() *cobra.Command {
	var containerType string
	cmd := &cobra.Command{
		Use:   "set-status <id> <newStatus>",
		Short: "Transition an entity's status through the workflow engine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.Service()
			if err != nil {
				return err
			}
			env := svc.ManageContainer(context.Background(), tools.ManageContainerParams{
				Op: "setStatus", ContainerType: containerType, ID: args[0], NewStatus: args[1],
			})
			return cli.PrintEnvelope(env)
		},
	}
	cmd.Flags().StringVar(&containerType, "type", "task", "project, feature, or task")
	return cmd
}

func nextCmd() *cobra.Command {
	var limit int
	var detail bool
	var projectID, featureID string
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Recommend the next unblocked task(s) to work on",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.Service()
			if err != nil {
				return err
			}
			p := tools.GetNextItemParams{Limit: &limit, Detail: detail}
			if projectID != "" {
				p.ProjectID = &projectID
			}
			if featureID != "" {
				p.FeatureID = &featureID
			}
			env := svc.GetNextItem(context.Background(), p)
			return cli.PrintEnvelope(env)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 1, "how many recommendations to return (1-20)")
	cmd.Flags().BoolVar(&detail, "detail", false, "include summary, tags, and parentId")
	cmd.Flags().StringVar(&projectID, "project", "", "restrict to a project")
	cmd.Flags().StringVar(&featureID, "feature", "", "restrict to a feature")
	return cmd
}

func blockedCmd() *cobra.Command {
	var projectID, featureID string
	cmd := &cobra.Command{
		Use:   "blocked",
		Short: "List tasks currently blocked by an unsatisfied dependency",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.Service()
			if err != nil {
				return err
			}
			p := tools.GetBlockedParams{}
			if projectID != "" {
				p.ProjectID = &projectID
			}
			if featureID != "" {
				p.FeatureID = &featureID
			}
			env := svc.GetBlocked(context.Background(), p)
			return cli.PrintEnvelope(env)
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "restrict to a project")
	cmd.Flags().StringVar(&featureID, "feature", "", "restrict to a feature")
	return cmd
}

func depCmd() *cobra.Command {
	var from, to, kind, unblockAt string
	cmd := &cobra.Command{
		Use:   "dep-create",
		Short: "Create a dependency edge between two tasks, after a cycle check",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.Service()
			if err != nil {
				return err
			}
			env := svc.ManageDependency(context.Background(), tools.ManageDependencyParams{
				Op: "create", From: from, To: to, Kind: kind, UnblockAt: unblockAt,
			})
			return cli.PrintEnvelope(env)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source task id (the blocking task for BLOCKS)")
	cmd.Flags().StringVar(&to, "to", "", "target task id (the blocked task for BLOCKS)")
	cmd.Flags().StringVar(&kind, "type", "BLOCKS", "BLOCKS, IS_BLOCKED_BY, or RELATES_TO")
	cmd.Flags().StringVar(&unblockAt, "unblock-at", "", "queue, work, review, or terminal (default terminal)")
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <entityId>",
		Short: "Show the role-transition audit trail for an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.Service()
			if err != nil {
				return err
			}
			env := svc.QueryHistory(context.Background(), tools.QueryHistoryParams{EntityID: args[0]})
			return cli.PrintEnvelope(env)
		},
	}
	return cmd
}
