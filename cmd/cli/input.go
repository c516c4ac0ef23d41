package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/mattn/go-shellwords"
	"golang.org/x/term"

	"github.com/and161185/factshare/internal/model"
)

// readAll reads a file, or in when p is "-".
func readAll(p string, in io.Reader) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(p)
}

// contentArg resolves --content/--file. "-" for either reads in.
// ok is false when neither was given.
func contentArg(content, file string, in io.Reader) (text string, ok bool, err error) {
	switch {
	case content != "" && file != "":
		return "", false, errors.New("use either --content or --file, not both")
	case file != "":
		b, err := readAll(file, in)
		return string(b), err == nil, err
	case content == "-":
		b, err := readAll("-", in)
		return string(b), err == nil, err
	case content != "":
		return content, true, nil
	}
	return "", false, nil
}

// resolveFactID accepts a full ID or an unambiguous prefix of a loaded fact's ID.
func resolveFactID(facts []model.Fact, arg string) (uuid.UUID, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if id, err := uuid.FromString(arg); err == nil {
		return id, nil
	}
	if arg == "" {
		return uuid.Nil, errors.New("fact id is required")
	}
	var found []uuid.UUID
	for _, f := range facts {
		if strings.HasPrefix(f.ID.String(), arg) {
			found = append(found, f.ID)
		}
	}
	switch len(found) {
	case 0:
		return uuid.Nil, fmt.Errorf("no fact matches %q", arg)
	case 1:
		return found[0], nil
	default:
		return uuid.Nil, fmt.Errorf("%q matches %d facts, use more characters", arg, len(found))
	}
}

// readPassword prompts on out and reads without echo when in is a terminal;
// piped input is read as a plain line.
func readPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return promptLine(in, out, prompt)
	}
	fmt.Fprint(out, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// promptLine writes prompt and reads one line from in.
func promptLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// splitArgs splits a shell line into words with shell quoting rules. Variables
// and backticks are kept literally; unquoted ; & | < > are rejected rather
// than ending the command.
func splitArgs(line string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("unterminated quote or escape: %w", err)
	}
	if p.Position >= 0 {
		return nil, fmt.Errorf("quote %q to use it in an argument", line[p.Position])
	}
	return args, nil
}
