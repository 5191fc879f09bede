// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/toeirei/credmaster/internal/creds"
	"github.com/toeirei/credmaster/internal/db"
	"github.com/toeirei/credmaster/internal/i18n"
	"github.com/toeirei/credmaster/internal/model"
)

const credsLong = `List, filter, export and delete stored credentials of the active workspace.

Usage:
  creds [-h]
  creds [help]
  creds add <key:value>...
  creds [options] [host-range ...]

Options:
  -o <file>                  Write the listing to a CSV file (.zst compresses it)
  -d                         Delete the listed credentials
  -P, --password <regex>     Match secrets against a case-insensitive regex ("" for blank only)
  -p, --port <portspec>      Only logins on these ports (22,80,8000-8100)
  -s, --service <names>      Only logins on these comma separated service names
  -u, --user <regex>         Match usernames against a case-insensitive regex ("" for blank only)
  -t, --type <type>          Only secrets of this type: password, hash or ntlm
  -O, --origins <hostspec>   Only credentials obtained from these hosts
  -R, --rhosts               Hand the matched hosts to the RHOSTS sink

Host ranges accept addresses, CIDR blocks and ranges (10.0.0.1-20).

With -d, every credential that matches the options is deleted once, even
when none of its logins falls inside the given host ranges and no row is
printed for it. List without -d first to review what a delete will hit.

Examples:
  creds 10.0.0.0/24 -s ssh,smb
  creds -u '' -t ntlm
  creds -d -p 21 -o ftp.csv`

const credsAddLong = `Add a credential to the active workspace from key:value pairs.
Only the first colon separates key and value, so values may contain colons.

Keys:
  user          Username
  password      Cleartext password
  ntlm          NTLM hash as LM:NT hex
  hash          Nonreplayable hash
  ssh-key       Path of a private key file to store
  realm         Realm value
  realm-type    Realm type: domain (default), db2db, sid, pgdb, rsync, wildcard
  host, port    Record a login at host:port/tcp (both required)

At most one of password, ntlm, hash and ssh-key may be given.

Examples:
  creds add user:admin password:notpassword realm:workgroup
  creds add user:guest ntlm:aad3b435b51404eeaad3b435b51404ee:31d6cfe0d16ae931b73c59d7e0c089c0
  creds add user:root ssh-key:/tmp/id_rsa host:10.0.0.5 port:22`

func newCredsCmd() *cobra.Command {
	credsCmd := &cobra.Command{
		Use:                "creds [options] [host-range ...]",
		Short:              "List, filter, export and delete credentials",
		Long:               credsLong,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE:               runCreds,
	}
	credsCmd.AddCommand(&cobra.Command{
		Use:                "add <key:value>...",
		Short:              "Add a credential from key:value pairs",
		Long:               credsAddLong,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE:               runCredsAdd,
	})
	return credsCmd
}

func runCreds(cmd *cobra.Command, args []string) error {
	rest, err := applyGlobalFlags(cmd.Root(), args)
	if err != nil {
		return err
	}
	spec, err := creds.ParseFilterSpec(rest)
	if errors.Is(err, creds.ErrHelp) {
		return cmd.Help()
	}
	if err != nil {
		return err
	}
	if err := setupDefaultServices(cmd, nil); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reporter := &creds.Reporter{
		Out:    out,
		Sink:   newHostSink(out, appConfig.RHosts.File, appConfig.RHosts.Clipboard),
		Styled: isTerminal(out),
	}
	return withWorkspace(cmd.Context(), func(ctx context.Context, r *db.Repo, ws model.Workspace) error {
		_, err := creds.List(ctx, r, ws.ID, spec, reporter)
		return err
	})
}

func runCredsAdd(cmd *cobra.Command, args []string) error {
	rest, err := applyGlobalFlags(cmd.Root(), args)
	if err != nil {
		return err
	}
	req, err := creds.ParseAddTokens(rest, os.ReadFile)
	if errors.Is(err, creds.ErrHelp) {
		return cmd.Help()
	}
	if err != nil {
		return err
	}
	if err := setupDefaultServices(cmd, nil); err != nil {
		return err
	}
	return withWorkspace(cmd.Context(), func(ctx context.Context, r *db.Repo, ws model.Workspace) error {
		core, err := creds.Add(ctx, r, ws.ID, req)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("creds.added", core.ID))
		return nil
	})
}

// withWorkspace runs fn on one store session with the active workspace,
// creating the workspace on first use.
func withWorkspace(ctx context.Context, fn func(context.Context, *db.Repo, model.Workspace) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return appStore.Session(ctx, func(r *db.Repo) error {
		ws, err := r.Workspace(ctx, appConfig.Workspace, true)
		if err != nil {
			return &creds.RepositoryError{Op: "select workspace " + appConfig.Workspace, Err: err}
		}
		return fn(ctx, r, ws)
	})
}

// applyGlobalFlags sets the root's persistent flags found among args, which
// cobra leaves unparsed for commands with DisableFlagParsing, and returns
// the remaining tokens in order. Values of creds options are never taken
// for global flags.
func applyGlobalFlags(root *cobra.Command, args []string) ([]string, error) {
	pf := root.PersistentFlags()
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if creds.TakesValue(tok) {
			rest = append(rest, tok)
			if i+1 < len(args) {
				i++
				rest = append(rest, args[i])
			}
			continue
		}

		var name, value string
		var hasValue bool
		switch {
		case strings.HasPrefix(tok, "--") && len(tok) > 2:
			name, value, hasValue = strings.Cut(tok[2:], "=")
			if pf.Lookup(name) == nil {
				rest = append(rest, tok)
				continue
			}
		case len(tok) == 2 && tok[0] == '-' && tok[1] != '-':
			f := pf.ShorthandLookup(tok[1:])
			if f == nil {
				rest = append(rest, tok)
				continue
			}
			name = f.Name
		default:
			rest = append(rest, tok)
			continue
		}

		f := pf.Lookup(name)
		if !hasValue {
			if f.NoOptDefVal != "" {
				value = f.NoOptDefVal
			} else {
				if i+1 >= len(args) {
					return nil, &creds.ArgumentError{Msg: fmt.Sprintf("flag --%s requires an argument", name)}
				}
				i++
				value = args[i]
			}
		}
		if err := pf.Set(name, value); err != nil {
			return nil, &creds.ArgumentError{Msg: "invalid value for --" + name, Err: err}
		}
	}
	return rest, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
