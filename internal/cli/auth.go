package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/talktotext/talktotext/internal/client"
)

var (
	authEmail    string
	authPassword string
	regName      string
	regPhone     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the TalkToText backend",
	Long: `Sign in and store the session token locally.

The password is prompted for when not given with --password.

Examples:
  talktotext login --email ada@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Long: `Create an account on the TalkToText backend and store the session token.

Examples:
  talktotext register --name "Ada Lovelace" --email ada@example.com`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&authEmail, "email", "e", "", "account email")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "account password (prompted when empty)")
	}
	registerCmd.Flags().StringVarP(&regName, "name", "n", "", "full name")
	registerCmd.Flags().StringVar(&regPhone, "phone", "", "phone number (optional)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, password, err := credentials(newInput(cmd))
	if err != nil {
		return err
	}

	sess, err := sessions.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	name := email
	if sess.User != nil && sess.User.Name != "" {
		name = sess.User.Name
	}
	fmt.Printf("Signed in as %s\n", name)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	in := newInput(cmd)
	if strings.TrimSpace(regName) == "" {
		var err error
		regName, err = in.prompt("Name: ")
		if err != nil {
			return err
		}
	}
	email, password, err := credentials(in)
	if err != nil {
		return err
	}

	reg := client.Registration{Name: regName, Email: email, Phone: regPhone, Password: password}
	if _, err := sessions.Register(cmd.Context(), reg); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	fmt.Printf("Account created. Signed in as %s\n", regName)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	view, err := sessions.Logout()
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	logger.Debug("logged out", "next_view", view)
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	if !sessions.IsLoggedIn() {
		fmt.Println("Not signed in. Use 'talktotext login' to sign in.")
		return nil
	}

	u := sessions.User()
	if u == nil {
		fmt.Println("Signed in (no profile stored).")
		return nil
	}
	fmt.Printf("%s <%s>\n", u.Name, u.Email)
	if u.Phone != nil && *u.Phone != "" {
		fmt.Printf("  Phone: %s\n", *u.Phone)
	}
	if verbose {
		fmt.Printf("  ID: %s\n", u.ID)
		fmt.Printf("  Session file: %s\n", cfg.SessionFile)
	}
	return nil
}

// input reads prompted values from the command's stdin.
type input struct {
	r        *bufio.Reader
	terminal bool
}

func newInput(cmd *cobra.Command) *input {
	in := cmd.InOrStdin()
	return &input{
		r:        bufio.NewReader(in),
		terminal: in == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())),
	}
}

func (in *input) prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := in.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// password reads without echo from a terminal, or a plain line otherwise.
func (in *input) password(label string) (string, error) {
	if !in.terminal {
		return in.prompt(label)
	}

	fmt.Fprint(os.Stderr, label)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// credentials fills email and password from flags or prompts.
func credentials(in *input) (string, string, error) {
	email := authEmail
	if strings.TrimSpace(email) == "" {
		var err error
		if email, err = in.prompt("Email: "); err != nil {
			return "", "", err
		}
	}
	password := authPassword
	if password == "" {
		var err error
		if password, err = in.password("Password: "); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}
