package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Glenferdinza/sporton/internal/client"
)

// errReported means the failure line was already printed.
var errReported = errors.New("reported")

type adminCLI struct {
	v      *viper.Viper
	client *client.Client
	in     io.Reader
	out    io.Writer
}

// newRootCmd builds the command tree. A nil client is built from --api and
// --token (or SPORTON_API and SPORTON_TOKEN) before each command runs.
func newRootCmd(c *client.Client) *cobra.Command {
	a := &adminCLI{v: viper.New(), client: c}
	a.v.SetEnvPrefix("SPORTON")
	a.v.AutomaticEnv()
	a.v.SetDefault("api", "http://localhost:8080/api")

	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Manage the SportOn store from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.in, a.out = cmd.InOrStdin(), cmd.OutOrStdout()
			if a.client == nil {
				a.client = client.New(a.v.GetString("api"))
			}
			if tok := a.v.GetString("token"); tok != "" && a.client.Token == "" {
				a.client.Token = tok
			}
		},
	}
	root.PersistentFlags().String("api", "", "API base URL (env SPORTON_API)")
	root.PersistentFlags().String("token", "", "admin bearer token (env SPORTON_TOKEN)")
	_ = a.v.BindPFlag("api", root.PersistentFlags().Lookup("api"))
	_ = a.v.BindPFlag("token", root.PersistentFlags().Lookup("token"))

	root.AddCommand(
		a.loginCmd(),
		a.banksCmd(),
		a.categoriesCmd(),
		a.productsCmd(),
		a.transactionsCmd(),
	)
	return root
}

func (a *adminCLI) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange admin credentials for a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, password := a.v.GetString("email"), a.v.GetString("password")
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			res, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return a.fail("login failed", err)
			}
			fmt.Fprintln(a.out, res.AccessToken)
			return nil
		},
	}
	cmd.Flags().String("email", "", "admin email (env ADMIN_EMAIL)")
	cmd.Flags().String("password", "", "admin password (env ADMIN_PASSWORD)")
	_ = a.v.BindPFlag("email", cmd.Flags().Lookup("email"))
	_ = a.v.BindPFlag("password", cmd.Flags().Lookup("password"))
	_ = a.v.BindEnv("email", "ADMIN_EMAIL")
	_ = a.v.BindEnv("password", "ADMIN_PASSWORD")
	return cmd
}

// deleteCmd is shared by every resource: confirm, delete, report, refresh.
func (a *adminCLI) deleteCmd(noun string, del func(context.Context, string) error, list func(context.Context) error) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !a.confirm(noun+" "+id, yes) {
				return nil
			}
			err := del(cmd.Context(), id)
			return a.after(cmd.Context(), err, "delete "+noun, noun+" deleted", list)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func listCmd(noun string, list func(context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List " + noun,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return list(cmd.Context())
		},
	}
}

// confirm asks before a destructive action unless skip is set.
func (a *adminCLI) confirm(what string, skip bool) bool {
	if skip {
		return true
	}
	fmt.Fprintf(a.out, "Delete %s? Type \"yes\" to confirm: ", what)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	if strings.TrimSpace(line) != "yes" {
		fmt.Fprintln(a.out, "cancelled")
		return false
	}
	return true
}

func (a *adminCLI) ok(msg string) {
	fmt.Fprintln(a.out, "ok:", msg)
}

func (a *adminCLI) fail(msg string, err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(a.out, "error: %s: %s\n", msg, apiErr.Message)
	} else {
		fmt.Fprintf(a.out, "error: %s: %v\n", msg, err)
	}
	return errReported
}

// after prints the outcome of a mutation and then the refreshed list.
func (a *adminCLI) after(ctx context.Context, err error, failMsg, okMsg string, list func(context.Context) error) error {
	var out error
	if err != nil {
		out = a.fail(failMsg, err)
	} else {
		a.ok(okMsg)
	}
	if lerr := list(ctx); lerr != nil && out == nil {
		out = lerr
	}
	return out
}

func (a *adminCLI) table(header string, rows func(w io.Writer)) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	_ = tw.Flush()
}

func openImage(path string) (*client.File, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return &client.File{Name: filepath.Base(path), Content: f}, func() { _ = f.Close() }, nil
}
