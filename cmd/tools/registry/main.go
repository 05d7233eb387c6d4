// cmd/tools/registry/main.go
package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ac-dispatch-workers/pkg/registry"

	at "ac-dispatch-workers/internal/workers/dispatch/assign-technician"
	cms "ac-dispatch-workers/internal/workers/dispatch/calculate-match-score"
	fc "ac-dispatch-workers/internal/workers/dispatch/filter-candidates"
	rt "ac-dispatch-workers/internal/workers/dispatch/rank-technicians"
	st "ac-dispatch-workers/internal/workers/dispatch/search-technicians"
	san "ac-dispatch-workers/internal/workers/dispatch/send-assignment-notification"
)

// servedTaskTypes maps each task type the worker manager registers to its
// input schema.
var servedTaskTypes = map[string]string{
	fc.TaskType:  fc.InputSchema,
	cms.TaskType: cms.InputSchema,
	rt.TaskType:  rt.InputSchema,
	st.TaskType:  st.InputSchema,
	at.TaskType:  at.InputSchema,
	san.TaskType: san.InputSchema,
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and check the dispatch activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "configs/activity-registry.json", "path to registry file")

	cmd.AddCommand(newListCommand(&path))
	cmd.AddCommand(newValidateCommand(&path))
	cmd.AddCommand(newStatusCommand(&path))
	return cmd
}

func newListCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTASK TYPE\tSTATUS\tSERVED")
			for _, a := range reg.Activities {
				_, ok := servedTaskTypes[a.TaskType]
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", a.ID, a.TaskType, a.ImplementationStatus, ok)
			}
			return w.Flush()
		},
	}
}

func newValidateCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:          "validate",
		Short:        "Check every activity is served by a worker and its schema compiles",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}

			problems := reg.Validate(servedTaskTypes)
			for _, p := range problems {
				fmt.Fprintln(cmd.ErrOrStderr(), "  -", p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("registry validation failed: %d problem(s)", len(problems))
			}

			for _, taskType := range unregistered(reg) {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: worker %s has no registry entry\n", taskType)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}
}

func newStatusCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:          "status <activity-id> <planned|in-progress|completed|verified>",
		Short:        "Set an activity's implementation status",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.SetStatus(args[0], args[1]); err != nil {
				return err
			}
			if err := registry.Save(reg, *path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s status to %s\n", args[0], args[1])
			return nil
		},
	}
}

func unregistered(reg *registry.ActivityRegistry) []string {
	seen := make(map[string]bool, len(reg.Activities))
	for _, a := range reg.Activities {
		seen[a.TaskType] = true
	}
	var missing []string
	for taskType := range servedTaskTypes {
		if !seen[taskType] {
			missing = append(missing, taskType)
		}
	}
	sort.Strings(missing)
	return missing
}
