package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schedwise/schedwise/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to a Google account",
		Long: `Authorize schedwise to access a Google account's Calendar,
Contacts and Gmail. Prints an authorization URL, then exchanges the code
you paste back for a token stored in the user cache directory.

Multiple accounts can be authorized by running the command once per
account name, e.g. --account work and --account personal.

Requires SCHEDWISE_GOOGLE_CLIENT_ID and SCHEDWISE_GOOGLE_CLIENT_SECRET
to be set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if google.HasTokenForAccount(account) {
				fmt.Printf("Account %q is already authorized. Re-authorizing replaces the stored token.\n\n", account)
			}

			fmt.Println("Open the following URL in your browser and authorize access:")
			fmt.Printf("\n  %s\n\n", google.GetAuthURLForAccount(account))
			fmt.Print("Paste the authorization code here: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, code); err != nil {
				return err
			}

			fmt.Printf("Account %q authorized.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Account name to authorize (e.g., work, personal)")

	return cmd
}
