package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matijazezelj/assetutil/internal/inventory"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// --- asset ---

func assetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Manage assets",
	}
	cmd.AddCommand(assetListCmd(), assetShowCmd(), assetCreateCmd(), assetUpdateCmd(), assetDeleteCmd())
	return cmd
}

func assetListCmd() *cobra.Command {
	var f inventory.AssetFilter
	var status, provider string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			f.Status = models.AssetStatus(status)
			f.Provider = models.Provider(provider)
			assets, err := rt.inv.Assets.ListAssets(cmd.Context(), f)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tLOCATION\tPROVIDER")
			for _, a := range assets {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Type, a.Status, a.Location, a.Provider)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&f.Type, "type", "", "filter by asset type")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&provider, "provider", "", "filter by provider")
	cmd.Flags().StringVar(&f.Location, "location", "", "filter by location")
	return cmd
}

func assetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"get"},
		Short:   "Print an asset with its dependencies",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()
			ctx := cmd.Context()

			a, err := rt.inv.Assets.GetAssetByID(ctx, args[0])
			if err != nil {
				return err
			}
			deps, err := rt.inv.Dependencies.GetDependenciesForAsset(ctx, a.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				models.Asset
				Dependencies []models.Dependency `json:"dependencies"`
			}{a, deps})
		},
	}
}

func assetCreateCmd() *cobra.Command {
	var in models.AssetInput
	var status, provider string
	var settings map[string]string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an asset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			in.Status = models.AssetStatus(status)
			in.Provider = models.Provider(provider)
			in.Configuration = toAnyMap(settings)
			a, err := rt.inv.Assets.CreateAsset(actorContext(cmd.Context()), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created asset %s\n", a.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "asset name")
	cmd.Flags().StringVar(&in.Type, "type", "", "asset type (server, database, application, ...)")
	cmd.Flags().StringVar(&in.Location, "location", "", "where the asset runs")
	cmd.Flags().StringVar(&status, "status", "", "active, inactive or maintenance (default active)")
	cmd.Flags().StringVar(&provider, "provider", "", "aws, azure or other")
	cmd.Flags().StringToStringVar(&settings, "set", nil, "configuration key=value (repeatable)")
	return cmd
}

func assetUpdateCmd() *cobra.Command {
	var name, typ, location, status, provider string
	var settings map[string]string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p models.AssetPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = &name
			}
			if flags.Changed("type") {
				p.Type = &typ
			}
			if flags.Changed("location") {
				p.Location = &location
			}
			if flags.Changed("status") {
				s := models.AssetStatus(status)
				p.Status = &s
			}
			if flags.Changed("provider") {
				pr := models.Provider(provider)
				p.Provider = &pr
			}
			if flags.Changed("set") {
				p.Configuration = toAnyMap(settings)
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			a, err := rt.inv.Assets.UpdateAsset(actorContext(cmd.Context()), args[0], p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&typ, "type", "", "new type")
	cmd.Flags().StringVar(&location, "location", "", "new location")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&provider, "provider", "", "new provider")
	cmd.Flags().StringToStringVar(&settings, "set", nil, "replace the configuration with key=value pairs")
	return cmd
}

func assetDeleteCmd() *cobra.Command {
	var cascade bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			r, err := rt.inv.RemoveAsset(actorContext(cmd.Context()), args[0], cascade)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Deleted asset %s\n", args[0])
			if cascade {
				_, _ = fmt.Fprintf(out, "  removed %d dependencies, %d schedules, %d configurations, %d attachments\n",
					r.Dependencies, r.Schedules, r.Configurations, r.Attachments)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cascade, "cascade", true, "also remove the asset's dependencies, schedules, configurations and attachments")
	return cmd
}

func toAnyMap(m map[string]string) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- dependency ---

func dependencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dependency",
		Aliases: []string{"dep"},
		Short:   "Manage dependencies between assets",
	}
	cmd.AddCommand(dependencyListCmd(), dependencyAddCmd(), dependencyUpdateCmd(), dependencyRemoveCmd())
	return cmd
}

func dependencyListCmd() *cobra.Command {
	var assetID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dependencies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			var deps []models.Dependency
			if assetID != "" {
				deps, err = rt.inv.Dependencies.GetDependenciesForAsset(cmd.Context(), assetID)
			} else {
				deps, err = rt.inv.Dependencies.GetAllDependencies(cmd.Context())
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tSOURCE\tTARGET\tTYPE\tIMPACT")
			for _, d := range deps {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.SourceAssetID, d.TargetAssetID, d.Type, d.Impact)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&assetID, "asset", "", "only dependencies touching this asset")
	return cmd
}

func dependencyAddCmd() *cobra.Command {
	var in models.DependencyInput
	var typ, impact string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a dependency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			in.Type = models.DependencyType(typ)
			in.Impact = models.Level(impact)
			d, err := rt.inv.Dependencies.AddDependency(actorContext(cmd.Context()), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added dependency %s (%s -> %s)\n", d.ID, d.SourceAssetID, d.TargetAssetID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.SourceAssetID, "source", "", "dependent asset id")
	cmd.Flags().StringVar(&in.TargetAssetID, "target", "", "asset depended upon")
	cmd.Flags().StringVar(&typ, "type", string(models.DependencyDependsOn), "requires, depends-on or related-to")
	cmd.Flags().StringVar(&impact, "impact", string(models.LevelMedium), "low, medium, high or critical")
	cmd.Flags().StringVar(&in.Description, "description", "", "free-form description")
	return cmd
}

func dependencyUpdateCmd() *cobra.Command {
	var typ, impact, description string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a dependency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p models.DependencyPatch
			if cmd.Flags().Changed("type") {
				t := models.DependencyType(typ)
				p.Type = &t
			}
			if cmd.Flags().Changed("impact") {
				l := models.Level(impact)
				p.Impact = &l
			}
			if cmd.Flags().Changed("description") {
				p.Description = &description
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			d, err := rt.inv.Dependencies.UpdateDependency(actorContext(cmd.Context()), args[0], p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), d)
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "new type")
	cmd.Flags().StringVar(&impact, "impact", "", "new impact")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	return cmd
}

func dependencyRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a dependency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.inv.Dependencies.RemoveDependency(actorContext(cmd.Context()), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed dependency %s\n", args[0])
			return nil
		},
	}
}
