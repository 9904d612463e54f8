package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matijazezelj/assetutil/pkg/models"
)

func integrationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integration",
		Short: "Manage cloud provider integrations",
	}
	cmd.AddCommand(
		integrationListCmd(),
		integrationAWSCmd(),
		integrationAzureCmd(),
		integrationValidateCmd(),
		integrationVerifyCmd(),
		integrationStatusCmd(),
		integrationRemoveCmd(),
	)
	return cmd
}

func integrationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List integrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			list, err := rt.inv.Integrations.ListIntegrations(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tPROVIDER\tREGION\tSTATUS\tCREATED")
			for _, i := range list {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", i.ID, i.Provider, i.Region, i.Status, i.CreatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
}

func integrationAWSCmd() *cobra.Command {
	var cfg models.AWSConfig

	cmd := &cobra.Command{
		Use:   "aws",
		Short: "Store an AWS integration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			integ, err := rt.inv.Integrations.IntegrateAWS(actorContext(cmd.Context()), cfg)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created AWS integration %s\n", integ.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.Region, "region", "us-east-1", "AWS region")
	cmd.Flags().StringVar(&cfg.Credentials.AccessKey, "access-key", "", "access key id")
	cmd.Flags().StringVar(&cfg.Credentials.SecretKey, "secret-key", "", "secret access key")
	return cmd
}

func integrationAzureCmd() *cobra.Command {
	var cfg models.AzureConfig

	cmd := &cobra.Command{
		Use:   "azure",
		Short: "Store an Azure integration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			integ, err := rt.inv.Integrations.IntegrateAzure(actorContext(cmd.Context()), cfg)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created Azure integration %s\n", integ.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.Region, "region", "", "Azure region")
	cmd.Flags().StringVar(&cfg.Credentials.TenantID, "tenant-id", "", "directory (tenant) id")
	cmd.Flags().StringVar(&cfg.Credentials.ClientID, "client-id", "", "application (client) id")
	cmd.Flags().StringVar(&cfg.Credentials.ClientSecret, "client-secret", "", "client secret")
	return cmd
}

func integrationValidateCmd() *cobra.Command {
	var provider string
	var creds models.Credentials

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that credentials carry every field the provider needs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, err := rt.inv.Integrations.ValidateCredentials(models.CloudProvider(provider), creds); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Credentials are complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "aws", "aws or azure")
	cmd.Flags().StringVar(&creds.AccessKey, "access-key", "", "AWS access key id")
	cmd.Flags().StringVar(&creds.SecretKey, "secret-key", "", "AWS secret access key")
	cmd.Flags().StringVar(&creds.TenantID, "tenant-id", "", "Azure tenant id")
	cmd.Flags().StringVar(&creds.ClientID, "client-id", "", "Azure client id")
	cmd.Flags().StringVar(&creds.ClientSecret, "client-secret", "", "Azure client secret")
	return cmd
}

func integrationVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id>",
		Short: "Check an AWS integration's credentials against the provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.inv.Integrations.VerifyIntegration(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Integration %s verified\n", args[0])
			return nil
		},
	}
}

func integrationStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "status <id> <active|inactive>",
		Short:     "Enable or disable an integration",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(models.IntegrationActive), string(models.IntegrationInactive)},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			integ, err := rt.inv.Integrations.SetIntegrationStatus(actorContext(cmd.Context()), args[0], models.IntegrationStatus(args[1]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Integration %s is %s\n", integ.ID, integ.Status)
			return nil
		},
	}
}

func integrationRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an integration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.inv.Integrations.RemoveIntegration(actorContext(cmd.Context()), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed integration %s\n", args[0])
			return nil
		},
	}
}
