package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/and161185/factshare/internal/client/probe"
	"github.com/and161185/factshare/internal/model"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the client version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noSetup: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "facts %s (%s)\n", version, buildDate)
		},
	}
}

// password returns the flag value or asks for it; the shell shares stdin so it never prompts.
func (a *app) password(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" || a.inShell {
		return flag, nil
	}
	return readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
}

func newSignupCmd(a *app) *cobra.Command {
	var name, email, pw string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.password(cmd, pw)
			if err != nil {
				return err
			}
			ctx, cancel := a.reqCtx(cmd.Context())
			defer cancel()
			if err := a.ctl.Signup(ctx, name, email, p); err != nil {
				return err
			}
			s := a.ctl.State().Session
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s.\n", s.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&pw, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, pw string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.password(cmd, pw)
			if err != nil {
				return err
			}
			ctx, cancel := a.reqCtx(cmd.Context())
			defer cancel()
			if err := a.ctl.Login(ctx, email, p); err != nil {
				return err
			}
			st := a.ctl.State()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>.\n", st.Session.Name, st.Session.Email)
			if st.ErrorMessage != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), banner(st.ErrorMessage))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&pw, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.reqCtx(cmd.Context())
			defer cancel()
			a.ctl.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.ctl.State().Session
			if s == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", s.Name, s.Email)
			return nil
		},
	}
}

var errSignedOut = errors.New("not signed in; run `facts login` first")

func (a *app) requireSession() error {
	if a.ctl.State().Session == nil {
		return errSignedOut
	}
	return nil
}

func newListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all facts, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx, cancel := a.reqCtx(cmd.Context())
			defer cancel()
			if err := a.ctl.LoadFacts(ctx); err != nil {
				return err
			}
			if a.inShell {
				// the shell re-renders the list on change
				return nil
			}
			facts := a.ctl.State().Facts
			if asJSON {
				return printJSON(cmd.OutOrStdout(), facts)
			}
			return renderFacts(cmd.OutOrStdout(), facts, a.ctl.CanEdit)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newPostCmd(a *app) *cobra.Command {
	var title, category, content, file string
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a new fact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			text, _, err := contentArg(content, file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cat, err := model.ParseCategory(category)
			if err != nil {
				return err
			}
			ctx, cancel := a.reqCtx(cmd.Context())
			defer cancel()
			f, err := a.ctl.CreateFact(ctx, model.FactDraft{Title: title, Content: text, Category: cat})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted %s.\n", shortID(f))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&category, "category", "", "Nutritional, Historical, Fun Fact or Culinary")
	cmd.Flags().StringVar(&content, "content", "", `text ("-" reads stdin)`)
	cmd.Flags().StringVar(&file, "file", "", `read the text from a file ("-" reads stdin)`)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var title, category, content, file string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, category or text of one of your facts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			id, err := resolveFactID(a.ctl.State().Facts, args[0])
			if err != nil {
				return err
			}
			var p model.FactPatch
			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			if cmd.Flags().Changed("category") {
				cat, err := model.ParseCategory(category)
				if err != nil {
					return err
				}
				p.Category = &cat
			}
			text, ok, err := contentArg(content, file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if ok {
				p.Content = &text
			}
			if p.Empty() {
				return errors.New("nothing to change; pass --title, --category, --content or --file")
			}
			ctx, cancel := a.reqCtx(cmd.Context())
			defer cancel()
			f, err := a.ctl.UpdateFact(ctx, id, p)
			if err != nil {
				return err
			}
			if !a.inShell {
				renderFact(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().StringVar(&content, "content", "", `new text ("-" reads stdin)`)
	cmd.Flags().StringVar(&file, "file", "", `read the new text from a file ("-" reads stdin)`)
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete one of your facts",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			id, err := resolveFactID(a.ctl.State().Facts, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.reqCtx(cmd.Context())
			defer cancel()
			if err := a.ctl.DeleteFact(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	var attempts int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Test the connection to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// reuse the check started with the app unless a new one is asked for
			a.ctl.WaitProbe()
			if cmd.Flags().Changed("attempts") || a.inShell {
				a.ctl.CheckConnection(cmd.Context(), attempts)
			}
			st := a.ctl.State()
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", badge(st.Connection, st.ConnectionLabel), a.cfg.Addr)
			if st.Connection != probe.StatusConnected {
				return fmt.Errorf("cannot reach %s", a.cfg.Addr)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&attempts, "attempts", 0, "maximum attempts (default from config)")
	return cmd
}
