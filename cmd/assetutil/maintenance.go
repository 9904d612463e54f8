package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/matijazezelj/assetutil/internal/ident"
	"github.com/matijazezelj/assetutil/internal/reminder"
	"github.com/matijazezelj/assetutil/pkg/models"
)

func maintenanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Schedule and track maintenance windows",
	}
	cmd.AddCommand(
		maintenanceListCmd(),
		maintenanceUpcomingCmd(),
		maintenanceScheduleCmd(),
		maintenanceUpdateCmd(),
		maintenanceCancelCmd(),
		maintenanceRemindCmd(),
	)
	return cmd
}

func printSchedules(cmd *cobra.Command, schedules []models.MaintenanceSchedule) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tASSET\tTITLE\tSTATUS\tPRIORITY\tSTART\tEND")
	for _, m := range schedules {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.AssetID, m.Title, m.Status, m.Priority,
			m.StartDate.Format(time.RFC3339), m.EndDate.Format(time.RFC3339))
	}
	return w.Flush()
}

func maintenanceListCmd() *cobra.Command {
	var assetID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active schedules, or every schedule of one asset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			var schedules []models.MaintenanceSchedule
			if assetID != "" {
				schedules, err = rt.inv.Maintenance.GetMaintenanceHistory(cmd.Context(), assetID)
			} else {
				schedules, err = rt.inv.Maintenance.GetAllSchedules(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printSchedules(cmd, schedules)
		},
	}

	cmd.Flags().StringVar(&assetID, "asset", "", "include cancelled windows of this asset")
	return cmd
}

func maintenanceUpcomingCmd() *cobra.Command {
	var within time.Duration

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List scheduled windows starting soon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			schedules, err := rt.inv.Maintenance.UpcomingSchedules(cmd.Context(), within)
			if err != nil {
				return err
			}
			return printSchedules(cmd, schedules)
		},
	}

	cmd.Flags().DurationVar(&within, "within", 7*24*time.Hour, "look-ahead window")
	return cmd
}

func maintenanceScheduleCmd() *cobra.Command {
	var assetID, start, end, typ, priority string
	var d models.MaintenanceDetails

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule a maintenance window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			startAt, err := ident.ParseTime(start)
			if err != nil {
				return err
			}
			endAt, err := ident.ParseTime(end)
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			d.Type = models.MaintenanceType(typ)
			d.Priority = models.Level(priority)
			m, err := rt.inv.Maintenance.ScheduleMaintenance(actorContext(cmd.Context()), assetID, startAt, endAt, d)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %s for %s (%s to %s)\n",
				m.ID, m.AssetID, m.StartDate.Format(time.RFC3339), m.EndDate.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&assetID, "asset", "", "asset id")
	cmd.Flags().StringVar(&start, "start", "", "window start (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "window end (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&d.Title, "title", "", "short title")
	cmd.Flags().StringVar(&d.Description, "description", "", "what will be done")
	cmd.Flags().StringVar(&typ, "type", string(models.MaintenancePreventive), "preventive, corrective or predictive")
	cmd.Flags().StringVar(&priority, "priority", string(models.LevelMedium), "low, medium, high or critical")
	cmd.Flags().StringVar(&d.AssignedTo, "assigned-to", "", "person or team doing the work")
	cmd.Flags().StringVar(&d.Notes, "notes", "", "additional notes")
	return cmd
}

func maintenanceUpdateCmd() *cobra.Command {
	var title, status, priority, assignedTo, notes, start, end string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a schedule (status moves scheduled, in-progress, completed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p models.MaintenancePatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("status") {
				s := models.MaintenanceStatus(status)
				p.Status = &s
			}
			if flags.Changed("priority") {
				l := models.Level(priority)
				p.Priority = &l
			}
			if flags.Changed("assigned-to") {
				p.AssignedTo = &assignedTo
			}
			if flags.Changed("notes") {
				p.Notes = &notes
			}
			if flags.Changed("start") {
				t, err := ident.ParseTime(start)
				if err != nil {
					return err
				}
				p.StartDate = &t
			}
			if flags.Changed("end") {
				t, err := ident.ParseTime(end)
				if err != nil {
					return err
				}
				p.EndDate = &t
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			m, err := rt.inv.Maintenance.UpdateMaintenanceSchedule(actorContext(cmd.Context()), args[0], p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), m)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&status, "status", "", "new status (in-progress, completed)")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority")
	cmd.Flags().StringVar(&assignedTo, "assigned-to", "", "new assignee")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	cmd.Flags().StringVar(&start, "start", "", "new start")
	cmd.Flags().StringVar(&end, "end", "", "new end")
	return cmd
}

func maintenanceCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			m, err := rt.inv.Maintenance.CancelSchedule(actorContext(cmd.Context()), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %s (%s)\n", m.ID, m.Title)
			return nil
		},
	}
}

func maintenanceRemindCmd() *cobra.Command {
	var horizon string

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send reminders for upcoming and overdue windows once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if horizon == "" {
				horizon = rt.cfg.Maintenance.ReminderHorizon
			}
			alerter, cleanup, err := buildAlerter(rt.cfg.Alerts)
			if err != nil {
				return err
			}
			defer cleanup()
			if alerter.Len() == 0 {
				return fmt.Errorf("no alert channel is enabled (see alerts.* in the config)")
			}

			sched, err := reminder.New(rt.inv.Maintenance, rt.inv.Assets, alerter, rt.cfg.Maintenance.ReminderInterval, horizon, logger)
			if err != nil {
				return err
			}
			n, err := sched.RunOnce(cmd.Context())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent %d reminder(s)\n", n)
			return err
		},
	}

	cmd.Flags().StringVar(&horizon, "horizon", "", "remind about windows starting within this duration (default from config)")
	return cmd
}
