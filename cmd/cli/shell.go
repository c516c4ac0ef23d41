package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/and161185/factshare/internal/client/controller"
)

const shellPrompt = "facts> "

const shellHelp = `Commands are the same as on the command line, without "facts":
  list | post --title T --category C --content X | edit <id> [--title T] [--category C] [--content X]
  rm <id> | login --email E --password P | signup --name N --email E --password P
  logout | whoami | status | dismiss | help | quit
Quote words with spaces: post --title "Orange carrots" ...`

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session showing status, errors and the list as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.inShell {
				return fmt.Errorf("already in the shell")
			}
			return a.runShell(cmd)
		},
	}
}

// runShell multiplexes input lines and state changes; output is only written
// from this goroutine.
func (a *app) runShell(cmd *cobra.Command) error {
	a.inShell = true
	defer func() { a.inShell = false }()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	changed := make(chan struct{}, 1)
	unsubscribe := a.ctl.Subscribe(func(controller.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	renderState(out, a.ctl.State(), a.ctl.CanEdit)
	fmt.Fprint(out, shellPrompt)
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case <-changed:
			fmt.Fprintln(out)
			renderState(out, a.ctl.State(), a.ctl.CanEdit)
			fmt.Fprint(out, shellPrompt)
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			if quit := a.shellLine(cmd, out, line); quit {
				return nil
			}
			fmt.Fprint(out, shellPrompt)
		}
	}
}

// shellLine runs one input line and reports whether the shell should exit.
func (a *app) shellLine(cmd *cobra.Command, out io.Writer, line string) bool {
	args, err := splitArgs(line)
	if err != nil {
		fmt.Fprintln(out, renderError(err))
		return false
	}
	if len(args) == 0 {
		return false
	}
	switch strings.ToLower(args[0]) {
	case "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprintln(out, shellHelp)
		return false
	case "dismiss":
		a.ctl.DismissError()
		return false
	}

	// a fresh tree per line so flag values never leak between commands
	sub := newRootCmd(a)
	sub.SetArgs(args)
	sub.SetIn(strings.NewReader(""))
	sub.SetOut(out)
	sub.SetErr(out)
	if err := sub.ExecuteContext(cmd.Context()); err != nil {
		fmt.Fprintln(out, renderError(err))
	}
	return false
}
