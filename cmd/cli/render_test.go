package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/factshare/internal/client/controller"
	"github.com/and161185/factshare/internal/client/probe"
	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
)

func sampleFacts() []model.Fact {
	alice := model.Author{ID: uuid.Must(uuid.NewV4()), Name: "Alice", Email: "alice@x.io"}
	return []model.Fact{
		{ID: uuid.Must(uuid.NewV4()), Title: "Orange", Content: "Carrots", Category: model.CategoryHistorical, Author: alice, CreatedAt: time.Now()},
		{ID: uuid.Must(uuid.NewV4()), Title: "Salt", Content: "Money", Category: model.CategoryCulinary, Author: model.Author{Name: "Bob"}, CreatedAt: time.Now()},
	}
}

func Test_renderFacts(t *testing.T) {
	t.Parallel()

	facts := sampleFacts()
	var buf bytes.Buffer
	mine := func(f model.Fact) bool { return f.Author.Name == "Alice" }
	if err := renderFacts(&buf, facts, mine); err != nil {
		t.Fatalf("renderFacts: %v", err)
	}
	out := buf.String()
	rowOf := func(f model.Fact) string {
		for _, l := range strings.Split(out, "\n") {
			if strings.Contains(l, shortID(f)) {
				return l
			}
		}
		t.Fatalf("no row for %s in:\n%s", f.Title, out)
		return ""
	}
	if !strings.Contains(rowOf(facts[0]), "*") || strings.Contains(rowOf(facts[1]), "*") {
		t.Fatalf("ownership marks wrong:\n%s", out)
	}
	for _, want := range []string{"TITLE", "AUTHOR", "Alice <alice@x.io>", "Culinary"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	_ = renderFacts(&buf, nil, nil)
	if !strings.Contains(buf.String(), "No facts yet.") {
		t.Fatalf("empty list: %q", buf.String())
	}
}

func Test_renderState(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderState(&buf, controller.State{ConnectionLabel: probe.LabelIdle}, nil)
	if !strings.Contains(buf.String(), "not signed in") || !strings.Contains(buf.String(), probe.LabelIdle) {
		t.Fatalf("anonymous state: %q", buf.String())
	}

	buf.Reset()
	renderState(&buf, controller.State{
		Session:         &model.Session{Name: "Alice", Email: "alice@x.io"},
		Facts:           sampleFacts(),
		Connection:      probe.StatusConnected,
		ConnectionLabel: probe.LabelConnected,
		ErrorMessage:    "Could not load facts.",
	}, nil)
	out := buf.String()
	for _, want := range []string{"signed in as Alice", "Could not load facts.", "Orange", probe.LabelConnected} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func Test_banner_And_renderError(t *testing.T) {
	t.Parallel()

	if banner("") != "" {
		t.Fatalf("empty banner must render nothing")
	}
	if !strings.Contains(banner("boom"), "boom") {
		t.Fatalf("banner lost message")
	}
	e := errs.New(errs.ErrWrite, "x", "Could not delete the fact.", errors.New("rpc error"))
	if got := renderError(e); !strings.Contains(got, "Could not delete the fact.") || strings.Contains(got, "rpc error") {
		t.Fatalf("renderError=%q", got)
	}
	if got := renderError(errors.New("plain")); !strings.Contains(got, "plain") {
		t.Fatalf("renderError=%q", got)
	}
}

func Test_oneLine(t *testing.T) {
	t.Parallel()

	if got := oneLine("a\n  b\tc", 10); got != "a b c" {
		t.Fatalf("oneLine=%q", got)
	}
	if got := oneLine("abcdefghijkl", 5); got != "abcd…" {
		t.Fatalf("oneLine=%q", got)
	}
}
