package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/xpump/platform/internal/auth"
)

var (
	tokenRealm   string
	tokenSubject string
	tokenEmail   string
	tokenRole    string
)

func init() {
	tokenCmd.Flags().StringVar(&tokenRealm, "realm", string(auth.RealmUser), "token realm: user or admin")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "subject id, random when empty")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "", "admin role (admin realm only)")
	rootCmd.AddCommand(tokenCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed JWT for local testing",
	Long: `Signs a token with JWT_SECRET. Intended for development and smoke tests;
production tokens are issued by the identity service.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	realm := auth.Realm(tokenRealm)
	switch realm {
	case auth.RealmUser:
		if tokenRole != "" {
			return fmt.Errorf("--role only applies to the admin realm")
		}
	case auth.RealmAdmin:
		if !auth.ValidAdminRole(tokenRole) {
			return fmt.Errorf("invalid admin role %q, want one of %v", tokenRole, auth.AllAdminRoles())
		}
	default:
		return fmt.Errorf("unknown realm %q", tokenRealm)
	}

	subject := uuid.New()
	if tokenSubject != "" {
		subject, err = uuid.Parse(tokenSubject)
		if err != nil {
			return fmt.Errorf("invalid --subject: %w", err)
		}
	}

	mgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTUserExpiry, cfg.JWTAdminExpiry)
	token, err := mgr.GenerateToken(realm, subject, tokenEmail, tokenRole)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
