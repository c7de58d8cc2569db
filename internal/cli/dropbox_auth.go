package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/bookshare/internal/storage/providers/dropbox"
)

// authorizer runs the Dropbox PKCE flow. *dropbox.Authorizer implements it.
type authorizer interface {
	AuthURL() (authURL, codeVerifier string, err error)
	Exchange(ctx context.Context, code, codeVerifier string) (*dropbox.TokenResponse, error)
}

// DropboxAuthCommand handles the Dropbox OAuth flow
type DropboxAuthCommand struct {
	AppKey string

	authorizer authorizer
	in         io.Reader
	out        io.Writer
}

// NewDropboxAuthCommand creates a new DropboxAuthCommand
func NewDropboxAuthCommand() *DropboxAuthCommand {
	return &DropboxAuthCommand{in: os.Stdin, out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *DropboxAuthCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("dropbox-auth", flag.ContinueOnError)

	// App key can come from env or flag
	envAppKey := os.Getenv("DROPBOX_APP_KEY")
	fs.StringVar(&cmd.AppKey, "app-key", envAppKey, "Dropbox App Key (or set DROPBOX_APP_KEY env variable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s dropbox-auth [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Authorize Bookshare to store files in your Dropbox and print the\n")
		fmt.Fprintf(os.Stderr, "refresh token to put into DROPBOX_REFRESH_TOKEN.\n\n")
		fmt.Fprintf(os.Stderr, "This command uses the PKCE (Proof Key for Code Exchange) flow,\n")
		fmt.Fprintf(os.Stderr, "which is secure for CLI applications without needing an app secret.\n\n")
		fmt.Fprintf(os.Stderr, "Prerequisites:\n")
		fmt.Fprintf(os.Stderr, "  1. Create a Dropbox app at https://www.dropbox.com/developers/apps\n")
		fmt.Fprintf(os.Stderr, "  2. Note your App Key from the app settings\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.AppKey == "" {
		return fmt.Errorf("dropbox app key required: set DROPBOX_APP_KEY environment variable or use -app-key flag")
	}
	return nil
}

// Run executes the Dropbox OAuth flow
func (cmd *DropboxAuthCommand) Run() error {
	if cmd.authorizer == nil {
		cmd.authorizer = dropbox.NewAuthorizer(cmd.AppKey)
	}

	authURL, codeVerifier, err := cmd.authorizer.AuthURL()
	if err != nil {
		return fmt.Errorf("failed to build auth URL: %w", err)
	}

	fmt.Fprintln(cmd.out, "Dropbox OAuth Flow")
	fmt.Fprintln(cmd.out, "==================")
	fmt.Fprintln(cmd.out, "\n1. Open this URL in your browser:")
	fmt.Fprintln(cmd.out)
	fmt.Fprintln(cmd.out, authURL)
	fmt.Fprintln(cmd.out, "\n2. Authorize the application")
	fmt.Fprintln(cmd.out, "3. Copy the authorization code and paste it below:")
	fmt.Fprintln(cmd.out)
	fmt.Fprint(cmd.out, "Authorization code: ")

	code, err := bufio.NewReader(cmd.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("authorization code cannot be empty")
	}

	// Exchange code for tokens
	result, err := cmd.authorizer.Exchange(context.Background(), code, codeVerifier)
	if err != nil {
		return fmt.Errorf("failed to complete flow: %w", err)
	}
	if result.RefreshToken == "" {
		return fmt.Errorf("dropbox did not return a refresh token")
	}

	cmd.printResult(result)
	return nil
}

func (cmd *DropboxAuthCommand) printResult(result *dropbox.TokenResponse) {
	fmt.Fprintln(cmd.out, "\nSuccessfully obtained Dropbox tokens!")
	fmt.Fprintf(cmd.out, "  Account ID: %s\n", result.AccountID)

	fmt.Fprintln(cmd.out, "\n"+strings.Repeat("=", 60))
	fmt.Fprintln(cmd.out, "REFRESH TOKEN (save this for long-term access):")
	fmt.Fprintln(cmd.out, strings.Repeat("=", 60))
	fmt.Fprintf(cmd.out, "\n%s\n", result.RefreshToken)

	fmt.Fprintln(cmd.out, "\nUsage:")
	fmt.Fprintln(cmd.out, "  export STORAGE_PROVIDER=dropbox")
	fmt.Fprintf(cmd.out, "  export DROPBOX_APP_KEY=%s\n", cmd.AppKey)
	fmt.Fprintln(cmd.out, "  export DROPBOX_REFRESH_TOKEN=<refresh_token>")
}
