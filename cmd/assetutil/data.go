package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matijazezelj/assetutil/internal/graph"
	"github.com/matijazezelj/assetutil/internal/importer"
	"github.com/matijazezelj/assetutil/internal/store"
)

// --- import ---

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create assets and dependencies from files",
	}
	cmd.AddCommand(importManifestCmd(), importComposeCmd())
	return cmd
}

func importManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <file>",
		Short: "Import an asset manifest (YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := importer.LoadManifest(args[0])
			if err != nil {
				return err
			}
			return applyPlan(cmd, plan)
		},
	}
}

func importComposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compose <path>",
		Short: "Import the services of a Docker Compose file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := importer.LoadCompose(args[0])
			if err != nil {
				return err
			}
			return applyPlan(cmd, plan)
		},
	}
}

func applyPlan(cmd *cobra.Command, plan *importer.Plan) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := importer.Apply(actorContext(cmd.Context()), rt.inv.Assets, rt.inv.Dependencies, plan, logger)
	printImportResult(cmd.OutOrStdout(), res)
	return err
}

func printImportResult(w io.Writer, r importer.Result) {
	_, _ = fmt.Fprintf(w, "Imported %d assets, %d dependencies\n", r.Assets, r.Dependencies)
	for _, warn := range r.Warnings {
		_, _ = fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}

// --- export ---

func exportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the asset graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			snap, err := rt.inv.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			out, err := graph.Export(format, graph.Data{Assets: snap.Assets, Dependencies: snap.Dependencies})
			if err != nil {
				return err
			}

			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			}
			if err := os.WriteFile(output, []byte(out), 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s export to %s\n", format, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "export format: "+strings.Join(graph.Formats, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

// --- graph ---

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage the Memgraph mirror",
	}
	cmd.AddCommand(graphSyncCmd())
	return cmd
}

func graphSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replace the Memgraph mirror with the current inventory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if !rt.cfg.Storage.Memgraph.Enabled {
				return fmt.Errorf("memgraph is not enabled in configuration (set storage.memgraph.enabled: true)")
			}
			if rt.mirror == nil {
				return fmt.Errorf("memgraph at %s is unreachable", rt.cfg.Storage.Memgraph.URI)
			}

			snap, err := rt.inv.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			res, err := rt.mirror.Sync(cmd.Context(), snap.Assets, snap.Dependencies)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Synced %d assets, %d dependencies\n", res.Assets, res.Dependencies)
			return nil
		},
	}
}

// --- db ---

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management",
	}
	cmd.AddCommand(dbStatsCmd(), dbBackupCmd())
	return cmd
}

func dbStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			st, err := rt.inv.Stats(ctx)
			if err != nil {
				return err
			}

			if rt.sqlite != nil {
				sizeStr := "unknown"
				if info, err := os.Stat(rt.dbPath); err == nil {
					sizeStr = formatBytes(info.Size())
				}
				_, _ = fmt.Fprintf(out, "Database: %s (%s)\n\n", rt.dbPath, sizeStr)
			} else {
				_, _ = fmt.Fprintf(out, "Storage: %s\n\n", rt.cfg.Storage.Driver)
			}

			_, _ = fmt.Fprintf(out, "Assets: %d\n", st.Assets)
			for _, k := range sortedKeys(st.AssetsByType) {
				_, _ = fmt.Fprintf(out, "  %-20s %d\n", k, st.AssetsByType[k])
			}
			_, _ = fmt.Fprintf(out, "\nBy status:\n")
			for _, k := range sortedKeys(st.AssetsByStatus) {
				_, _ = fmt.Fprintf(out, "  %-20s %d\n", k, st.AssetsByStatus[k])
			}
			_, _ = fmt.Fprintf(out, "\nDependencies:    %d\n", st.Dependencies)
			_, _ = fmt.Fprintf(out, "Schedules:       %d (%d cancelled)\n", st.Schedules, st.CancelledSchedules)
			_, _ = fmt.Fprintf(out, "Integrations:    %d\n", st.Integrations)
			_, _ = fmt.Fprintf(out, "Configurations:  %d\n", st.Configurations)
			_, _ = fmt.Fprintf(out, "Attachments:     %d\n", st.Attachments)
			_, _ = fmt.Fprintf(out, "History entries: %d\n", st.HistoryEntries)

			if rt.sqlite != nil {
				counts, err := rt.sqlite.TableCounts(ctx, store.Tables...)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "\nTables:\n")
				for _, t := range store.Tables {
					_, _ = fmt.Fprintf(out, "  %-22s %d rows\n", t, counts[t])
				}
			}
			return nil
		},
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dbBackupCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "backup <output-path>",
		Short: "Copy the SQLite database file to a backup location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			srcPath := rt.dbPath
			isSQLite := rt.sqlite != nil
			// release the database before copying it
			rt.Close()
			if !isSQLite {
				return fmt.Errorf("backup only supports the sqlite driver (storage.driver is %q)", rt.cfg.Storage.Driver)
			}

			out := cmd.OutOrStdout()
			dstPath := args[0]

			if _, err := os.Stat(dstPath); err == nil && !force {
				_, _ = fmt.Fprintf(out, "File %s already exists. Overwrite? [y/N]: ", dstPath)
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				answer = strings.TrimSpace(strings.ToLower(answer))
				if answer != "y" && answer != "yes" {
					_, _ = fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			if err := os.MkdirAll(filepath.Dir(dstPath), 0o750); err != nil {
				return fmt.Errorf("creating backup directory: %w", err)
			}

			src, err := os.Open(srcPath) // #nosec G304 -- path from config/flag
			if err != nil {
				return fmt.Errorf("opening source database: %w", err)
			}
			defer src.Close() //nolint:errcheck // best-effort cleanup

			dst, err := os.Create(dstPath) // #nosec G304 -- path from user CLI arg
			if err != nil {
				return fmt.Errorf("creating backup file: %w", err)
			}
			defer dst.Close() //nolint:errcheck // best-effort cleanup

			n, err := io.Copy(dst, src)
			if err != nil {
				return fmt.Errorf("copying database: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Backed up %s to %s (%s)\n", srcPath, dstPath, formatBytes(n))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing backup without asking")
	return cmd
}
