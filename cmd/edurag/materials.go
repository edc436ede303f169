package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edurag/tutorcli/internal/render"
)

func newMaterialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materials",
		Short: "List, watch and delete uploaded materials",
	}
	cmd.AddCommand(
		newMaterialsListCmd(),
		newMaterialsWatchCmd(),
		newMaterialsDeleteCmd(),
	)
	return cmd
}

func newMaterialsListCmd() *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded materials",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if local {
				materials, err := a.history.CachedMaterials()
				if err != nil {
					return err
				}
				a.state.ReplaceMaterials(materials)
			} else if err := a.loadMaterials(cmd.Context()); err != nil {
				return err
			}
			printMaterials(cmd, a)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Show the last cached list without contacting the server")
	return cmd
}

func newMaterialsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll every pending or processing material until it settles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.loadMaterials(ctx); err != nil {
				return err
			}
			printMaterials(cmd, a)
			// One poll task per non-terminal record, no matter how often
			// the list is reloaded.
			started := a.tracker.TrackPending(ctx, a.state.Materials())
			if started == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to watch; all materials are settled.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d material(s)...\n", started)
			a.tracker.Wait()
			return nil
		},
	}
}

func newMaterialsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a material (irreversible)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id := args[0]
			// Stop any poll task first so an in-flight status read can no
			// longer touch the deleted record.
			a.tracker.Cancel(id)
			if err := a.client.DeleteMaterial(cmd.Context(), id); err != nil {
				return err
			}
			a.state.RemoveMaterial(id)
			fmt.Fprintln(cmd.OutOrStdout(), "Material deleted successfully!")
			return nil
		},
	}
}

func printMaterials(cmd *cobra.Command, a *app) {
	materials := a.state.Materials()
	if len(materials) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "📚 No materials uploaded yet. Upload your first study material to get started.")
		return
	}
	for i := range materials {
		fmt.Fprintln(cmd.OutOrStdout(), render.MaterialLine(render.NewMaterialRow(&materials[i])))
	}
}
