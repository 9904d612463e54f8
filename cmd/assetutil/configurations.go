package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/matijazezelj/assetutil/pkg/models"
)

// --- configuration ---

func configurationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "configuration",
		Aliases: []string{"config"},
		Short:   "Manage configuration baselines",
	}
	cmd.AddCommand(configurationListCmd(), configurationCreateCmd(), configurationUpdateCmd(), configurationCheckCmd(), configurationDeleteCmd())
	return cmd
}

func configurationListCmd() *cobra.Command {
	var assetID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configurations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			var configs []models.Configuration
			if assetID != "" {
				configs, err = rt.inv.Configurations.GetConfigurationsForAsset(cmd.Context(), assetID)
			} else {
				configs, err = rt.inv.Configurations.GetAllConfigurations(cmd.Context())
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tASSET\tNAME\tVERSION\tCOMPLIANCE")
			for _, c := range configs {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.AssetID, c.Name, c.Version, c.Compliance.Status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&assetID, "asset", "", "only configurations of this asset")
	return cmd
}

func configurationCreateCmd() *cobra.Command {
	var in models.ConfigurationInput
	var settings map[string]string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a configuration baseline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			in.Settings = toAnyMap(settings)
			c, err := rt.inv.Configurations.CreateConfiguration(actorContext(cmd.Context()), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created configuration %s\n", c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.AssetID, "asset", "", "asset id")
	cmd.Flags().StringVar(&in.Name, "name", "", "configuration name")
	cmd.Flags().StringVar(&in.Version, "version", "", "baseline version")
	cmd.Flags().StringToStringVar(&settings, "set", nil, "setting key=value (repeatable)")
	return cmd
}

func configurationUpdateCmd() *cobra.Command {
	var name, version string
	var settings map[string]string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a configuration baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p models.ConfigurationPatch
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("version") {
				p.Version = &version
			}
			if cmd.Flags().Changed("set") {
				p.Settings = toAnyMap(settings)
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			c, err := rt.inv.Configurations.UpdateConfiguration(actorContext(cmd.Context()), args[0], p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&version, "version", "", "new version")
	cmd.Flags().StringToStringVar(&settings, "set", nil, "replace the settings with key=value pairs")
	return cmd
}

func configurationCheckCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "check <id>",
		Short: "Record a compliance check result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			c, err := rt.inv.Configurations.RecordComplianceCheck(actorContext(cmd.Context()), args[0], models.ComplianceStatus(status))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is %s (checked %s)\n", c.ID, c.Compliance.Status, c.Compliance.LastChecked.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", string(models.Compliant), "compliant, non-compliant or pending")
	return cmd
}

func configurationDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.inv.Configurations.DeleteConfiguration(actorContext(cmd.Context()), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted configuration %s\n", args[0])
			return nil
		},
	}
}

// --- attachment ---

func attachmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attachment",
		Short: "Manage files attached to assets",
	}
	cmd.AddCommand(attachmentListCmd(), attachmentUploadCmd(), attachmentGetCmd(), attachmentDeleteCmd())
	return cmd
}

func attachmentListCmd() *cobra.Command {
	var assetID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attachments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			var atts []models.Attachment
			if assetID != "" {
				atts, err = rt.inv.Attachments.GetAttachmentsForAsset(cmd.Context(), assetID)
			} else {
				atts, err = rt.inv.Attachments.GetAllAttachments(cmd.Context())
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tASSET\tNAME\tSIZE\tUPLOADED BY")
			for _, a := range atts {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.AssetID, a.Name, formatBytes(a.Size), a.UploadedBy)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&assetID, "asset", "", "only attachments of this asset")
	return cmd
}

func attachmentUploadCmd() *cobra.Command {
	var assetID, description string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file and attach it to an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			f, err := os.Open(args[0]) // #nosec G304 -- path from user CLI arg
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close() //nolint:errcheck // read-only

			name := filepath.Base(args[0])
			a, err := rt.inv.Attachments.Upload(actorContext(cmd.Context()), models.AttachmentInput{
				AssetID:     assetID,
				Name:        name,
				Type:        mime.TypeByExtension(filepath.Ext(name)),
				UploadedBy:  actor,
				Description: description,
			}, f)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as %s (%s)\n", name, a.ID, formatBytes(a.Size))
			return nil
		},
	}

	cmd.Flags().StringVar(&assetID, "asset", "", "asset id")
	cmd.Flags().StringVar(&description, "description", "", "what the file is")
	return cmd
}

func attachmentGetCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Write an attachment's content to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			_, rc, err := rt.inv.Attachments.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer rc.Close() //nolint:errcheck // read-only

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output) // #nosec G304 -- path from user CLI arg
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close() //nolint:errcheck // best-effort cleanup
				w = f
			}
			_, err = io.Copy(w, rc)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func attachmentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an attachment and its stored content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.inv.Attachments.DeleteAttachment(actorContext(cmd.Context()), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted attachment %s\n", args[0])
			return nil
		},
	}
}

// --- history ---

func historyCmd() *cobra.Command {
	var assetID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the change history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			var entries []models.HistoryEntry
			if assetID != "" {
				entries, err = rt.inv.History.GetHistoryForAsset(cmd.Context(), assetID)
			} else {
				entries, err = rt.inv.History.GetAllHistory(cmd.Context())
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "TIME\tASSET\tCHANGE\tBY\tFIELDS")
			for _, h := range entries {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", h.Timestamp.Format(time.RFC3339), h.AssetID, h.ChangeType, h.ChangedBy, changedFields(h.Changes))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&assetID, "asset", "", "only changes of this asset")
	return cmd
}

func changedFields(changes []models.FieldChange) string {
	if len(changes) == 0 {
		return "-"
	}
	out := changes[0].Field
	for _, c := range changes[1:] {
		out += "," + c.Field
	}
	return out
}
