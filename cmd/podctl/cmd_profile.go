package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"idhealth/internal/config"
	"idhealth/internal/domain/profiles"

	"github.com/spf13/cobra"
)

var (
	seedRole    string
	seedName    string
	seedEmail   string
	seedStorage string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "WebID and profile documents",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Resolve and print the profile of --webid",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		_, s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.cleanup()

		printProfile(cmd.OutOrStdout(), s.profile)
		return nil
	},
}

var profileSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the WebID and profile documents a user needs to sign in",
	Long: `Write pim:storage into the WebID document and name, email and role into
{storage}profile, keeping any other data of both documents. Needs a
persistent backend (solid or postgres); the memory backend is seeded with
IDHEALTH_DEV_PROFILES when the API starts.`,
	Example: `  podctl profile seed --webid https://alice.example/profile/card#me --role patient --name "Alice Rossi"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(webID) == "" {
			return fmt.Errorf("--webid is required")
		}

		ctx, cancel := withTimeout(cmd)
		defer cancel()

		ctx, s, err := openBackends(ctx)
		if err != nil {
			return err
		}
		defer s.cleanup()

		if s.cfg.Storage.Backend == config.BackendMemory {
			return fmt.Errorf("profile seed needs a persistent backend, IDHEALTH_STORAGE_BACKEND is %q", s.cfg.Storage.Backend)
		}

		return seedProfile(ctx, cmd.OutOrStdout(), s.svcs.Profiles, webID, profiles.SeedInput{
			Storage: seedStorage,
			Name:    seedName,
			Email:   seedEmail,
			Role:    profiles.Role(seedRole),
		})
	},
}

func seedProfile(ctx context.Context, w io.Writer, svc *profiles.Service, id string, in profiles.SeedInput) error {
	p, err := svc.Seed(ctx, id, in)
	if err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}
	fmt.Fprintln(w, "profile seeded")
	printProfile(w, p)
	return nil
}

func printProfile(w io.Writer, p profiles.Profile) {
	fmt.Fprintf(w, "  webid:   %s\n", p.WebID)
	fmt.Fprintf(w, "  storage: %s\n", p.StorageLocation)
	fmt.Fprintf(w, "  role:    %s\n", p.Role)
	if p.Name != "" {
		fmt.Fprintf(w, "  name:    %s\n", p.Name)
	}
	if p.Email != "" {
		fmt.Fprintf(w, "  email:   %s\n", p.Email)
	}
}

func init() {
	profileSeedCmd.Flags().StringVar(&seedRole, "role", "", "Role to write: patient or doctor")
	profileSeedCmd.Flags().StringVar(&seedName, "name", "", "Display name (vcard:fn)")
	profileSeedCmd.Flags().StringVar(&seedEmail, "email", "", "Email address (vcard:hasEmail)")
	profileSeedCmd.Flags().StringVar(&seedStorage, "storage", "", "Storage root (default: IDHEALTH_STORAGE_OVERRIDE or the WebID origin)")
	_ = profileSeedCmd.MarkFlagRequired("role")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSeedCmd)
}
