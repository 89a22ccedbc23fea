package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/artpar/cookiedesk/internal/app"
	"github.com/artpar/cookiedesk/internal/bulk"
	"github.com/artpar/cookiedesk/internal/collab"
	"github.com/artpar/cookiedesk/internal/cookies"
	"github.com/artpar/cookiedesk/internal/domain"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	JSON bool
}

// NewListCommand creates the list command.
func NewListCommand(global *GlobalOptions) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cookies of the current domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeStore, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer closeStore()

			list, err := a.Load(context.Background())
			if err != nil {
				return err
			}
			if opts.JSON {
				return outputCookiesJSON(cmd.OutOrStdout(), list)
			}
			return outputCookies(cmd.OutOrStdout(), a, list)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output cookies as JSON")

	return cmd
}

func outputCookies(out io.Writer, a *app.App, list []cookies.Cookie) error {
	if len(list) == 0 {
		fmt.Fprintln(out, "No cookies for the current domain")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVALUE\tDOMAIN\tPATH\tSCOPE")
	for _, c := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, a.Truncate(c.Value), c.Domain, c.Path, scopeOf(c))
	}
	return w.Flush()
}

// scopeOf labels whether a cookie is sent to subdomains of its domain.
func scopeOf(c cookies.Cookie) string {
	if c.IncludesSubdomains() {
		return "domain"
	}
	return "host"
}

func outputCookiesJSON(out io.Writer, list []cookies.Cookie) error {
	type jsonCookie struct {
		Name   string `json:"name"`
		Value  string `json:"value"`
		Domain string `json:"domain"`
		Path   string `json:"path"`

		IncludeSubdomains bool `json:"includeSubdomains"`
	}

	result := make([]jsonCookie, 0, len(list))
	for _, c := range list {
		result = append(result, jsonCookie{
			Name:              c.Name,
			Value:             c.Value,
			Domain:            c.Domain,
			Path:              c.Path,
			IncludeSubdomains: c.IncludesSubdomains(),
		})
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// NewAddCommand creates the add command.
func NewAddCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME [VALUE]",
		Short: "Add a cookie to the current domain",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeStore, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer closeStore()

			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			if err := a.Add(context.Background(), args[0], value); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cookie added")
			return nil
		},
	}
}

// SelectOptions identifies one cookie of the listing.
type SelectOptions struct {
	Domain string
	Path   string
}

func (o *SelectOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Domain, "domain", "", "Cookie domain, when the name is ambiguous")
	cmd.Flags().StringVar(&o.Path, "path", "", "Cookie path, when the name is ambiguous")
}

// selectCookie loads the listing and picks the named cookie.
func selectCookie(a *app.App, name string, sel *SelectOptions) (cookies.Cookie, error) {
	if _, err := a.Load(context.Background()); err != nil {
		return cookies.Cookie{}, err
	}
	return a.Find(name, sel.Domain, sel.Path)
}

// EditOptions holds options for the edit command.
type EditOptions struct {
	SelectOptions
	Name  string
	Value string
}

// NewEditCommand creates the edit command.
func NewEditCommand(global *GlobalOptions) *cobra.Command {
	opts := &EditOptions{}

	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Rename a cookie or change its value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("value") {
				return errors.New("nothing to change: pass --name and/or --value")
			}

			a, closeStore, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer closeStore()

			c, err := selectCookie(a, args[0], &opts.SelectOptions)
			if err != nil {
				return err
			}

			session := a.BeginEdit(c)
			if cmd.Flags().Changed("name") {
				session.PendingName = opts.Name
			}
			if cmd.Flags().Changed("value") {
				session.PendingValue = opts.Value
			}
			if err := a.SaveEdit(context.Background(), session); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cookie updated")
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.Name, "name", "", "New cookie name")
	cmd.Flags().StringVar(&opts.Value, "value", "", "New cookie value")

	return cmd
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(global *GlobalOptions) *cobra.Command {
	opts := &SelectOptions{}

	cmd := &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"delete"},
		Short:   "Delete a cookie",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeStore, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer closeStore()

			c, err := selectCookie(a, args[0], opts)
			if err != nil {
				return err
			}
			deleted, err := a.Delete(context.Background(), c)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cookie deleted")
			return nil
		},
	}

	opts.bind(cmd)
	return cmd
}

// NewClearCommand creates the clear command.
func NewClearCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cookie of the current domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeStore, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := context.Background()
			if _, err := a.Load(ctx); err != nil {
				return err
			}
			res, confirmed, err := a.ClearAll(ctx)
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d of %d cookies\n", res.Succeeded, res.Total)
			outputFailures(cmd.ErrOrStderr(), res)
			return nil
		},
	}
}

// ImportOptions holds options for the import command.
type ImportOptions struct {
	File string
}

// NewImportCommand creates the import command.
func NewImportCommand(global *GlobalOptions) *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import [TEXT]",
		Short: "Import cookies from JSON or name=value pairs",
		Long: `Import cookies into the current domain.

Input is either a JSON object of name/value pairs or a list of
name=value pairs separated by ';' or '&'. Without TEXT or --file the
input is read from stdin.

Examples:
  cookiedesk import '{"sid":"abc","theme":"dark"}'
  cookiedesk import 'sid=abc; theme=dark'
  pbpaste | cookiedesk import`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readImportText(cmd, global.filesystem(), args, opts)
			if err != nil {
				return err
			}

			a, closeStore, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := a.Import(context.Background(), text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d cookies\n", res.Succeeded, res.Total)
			outputFailures(cmd.ErrOrStderr(), res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read input from file")

	return cmd
}

func readImportText(cmd *cobra.Command, fs afero.Fs, args []string, opts *ImportOptions) (string, error) {
	switch {
	case len(args) == 1 && args[0] != "-":
		return args[0], nil
	case opts.File != "":
		data, err := afero.ReadFile(fs, opts.File)
		if err != nil {
			return "", fmt.Errorf("failed to read import file: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

func outputFailures(out io.Writer, res bulk.Result) {
	for _, f := range res.Failures {
		fmt.Fprintf(out, "  %s: %v\n", f.Name, f.Err)
	}
}

// ExportOptions holds options for the export command.
type ExportOptions struct {
	SelectOptions
	Stdout bool
}

// NewExportCommand creates the export command.
func NewExportCommand(global *GlobalOptions) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export [NAME]",
		Short: "Copy cookies as JSON to the clipboard",
		Long:  "Serialise the current domain's cookies (or one cookie) as a JSON object and copy it to the clipboard. When the clipboard is unavailable the JSON is printed instead.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []app.Option
			if opts.Stdout {
				extra = append(extra, app.WithClipboard(collab.ClipboardFunc(func(string) error { return nil })))
			}
			a, closeStore, err := openApp(cmd, global, extra...)
			if err != nil {
				return err
			}
			defer closeStore()

			var delivery app.Delivery
			if len(args) == 1 {
				c, err := selectCookie(a, args[0], &opts.SelectOptions)
				if err != nil {
					return err
				}
				delivery, err = a.ExportOne(c)
				if err != nil {
					return err
				}
			} else {
				ctx := context.Background()
				if _, err := a.Load(ctx); err != nil {
					return err
				}
				delivery, err = a.Export(ctx)
				if err != nil {
					return err
				}
			}

			if delivery.Copied && !opts.Stdout {
				fmt.Fprintln(cmd.OutOrStdout(), "Cookies copied to clipboard")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), delivery.Text)
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "Print instead of copying to the clipboard")

	return cmd
}

// NewDomainCommand creates the domain command.
func NewDomainCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "domain",
		Short: "Show the current hostname and the main domain queried with it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeStore, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer closeStore()

			host, err := a.Domain()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Hostname:    %s\n", host)
			fmt.Fprintf(out, "Main domain: %s\n", domain.MainDomainOf(host))
			if u := strings.TrimSpace(a.Config().URL); u != "" {
				fmt.Fprintf(out, "Page URL:    %s\n", u)
			}
			return nil
		},
	}
}
