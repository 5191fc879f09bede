// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toeirei/credmaster/internal/db"
	"github.com/toeirei/credmaster/internal/i18n"
)

func newWorkspaceCmd() *cobra.Command {
	workspaceCmd := &cobra.Command{
		Use:   "workspace",
		Short: "List and add workspaces",
		Long: `Workspaces partition stored credentials per engagement. The active one is
chosen with --workspace or the workspace config key and is created on first use.`,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List workspaces, marking the active one",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			return appStore.Session(cmd.Context(), func(r *db.Repo) error {
				all, err := r.Workspaces(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out, i18n.T("workspace.list_title"))
				for _, ws := range all {
					marker := " "
					if ws.Name == appConfig.Workspace {
						marker = "*"
					}
					_, _ = fmt.Fprintf(out, "%s %s\n", marker, ws.Name)
				}
				_, _ = fmt.Fprintln(out, i18n.T("workspace.active", appConfig.Workspace))
				return nil
			})
		},
	}

	addCmd := &cobra.Command{
		Use:     "add <name>",
		Short:   "Add a workspace",
		Args:    cobra.ExactArgs(1),
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			return appStore.Session(cmd.Context(), func(r *db.Repo) error {
				ws, err := r.CreateWorkspace(cmd.Context(), args[0])
				if errors.Is(err, db.ErrDuplicate) {
					return errors.New(i18n.T("workspace.exists", args[0]))
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("workspace.added", ws.Name))
				return nil
			})
		},
	}

	workspaceCmd.AddCommand(listCmd, addCmd)
	return workspaceCmd
}
