package convert

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/and161185/factshare/internal/errs"
	model "github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/rpc"
	u "github.com/gofrs/uuid/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFact_WireRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	f := model.Fact{
		ID:        u.Must(u.NewV4()),
		Title:     "Vitamin A",
		Content:   "Carrots are rich in beta-carotene",
		Category:  model.CategoryNutritional,
		Author:    model.Author{ID: u.Must(u.NewV4()), Name: "Alice", Email: "alice@x.io"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	got, err := FromRPCFact(ToRPCFact(f))
	if err != nil {
		t.Fatalf("FromRPCFact: %v", err)
	}
	if got != f {
		t.Fatalf("roundtrip mismatch:\n got %+v\nwant %+v", got, f)
	}
}

func TestFromRPCFact_PartialAndBadIDs(t *testing.T) {
	t.Parallel()

	got, err := FromRPCFact(rpc.Fact{Title: "only title"})
	if err != nil {
		t.Fatalf("partial: %v", err)
	}
	if got.ID != u.Nil || got.Author.ID != u.Nil || got.Title != "only title" {
		t.Fatalf("unexpected %+v", got)
	}

	if _, err := FromRPCFact(rpc.Fact{ID: "nope"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	if _, err := FromRPCFacts([]rpc.Fact{{}, {Author: rpc.User{ID: "bad"}}}); err == nil {
		t.Fatalf("want error on bad author id")
	}
}

func TestFromRPCUser(t *testing.T) {
	t.Parallel()

	id := u.Must(u.NewV4())
	s, err := FromRPCUser(rpc.User{ID: id.String(), Name: "Bob", Email: "bob@x.io"})
	if err != nil || s.ID != id || s.Name != "Bob" {
		t.Fatalf("got %+v, %v", s, err)
	}
	if _, err := FromRPCUser(rpc.User{Name: "anon"}); err == nil {
		t.Fatalf("want error for user without id")
	}
}

func TestUpdate_RoundTrip(t *testing.T) {
	t.Parallel()

	id := u.Must(u.NewV4())
	title := "T"
	cat := model.CategoryFunFact
	req := ToRPCUpdate(id, model.FactPatch{Title: &title, Category: &cat})
	if req.Content != nil || *req.Category != "Fun Fact" {
		t.Fatalf("bad request %+v", req)
	}

	gotID, p, err := FromRPCUpdate(req)
	if err != nil || gotID != id {
		t.Fatalf("FromRPCUpdate: %v %v", gotID, err)
	}
	if *p.Title != "T" || *p.Category != model.CategoryFunFact || p.Content != nil {
		t.Fatalf("bad patch %+v", p)
	}

	if _, _, err := FromRPCUpdate(&rpc.UpdateFactRequest{}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error on empty id, got %v", err)
	}
}

func TestOrder(t *testing.T) {
	t.Parallel()

	if ToRPCOrder(model.NewestFirst) != rpc.OrderDesc || ToRPCOrder(model.OldestFirst) != rpc.OrderAsc {
		t.Fatalf("ToRPCOrder mismatch")
	}
	if FromRPCOrder("") != model.NewestFirst || FromRPCOrder("asc") != model.OldestFirst {
		t.Fatalf("FromRPCOrder mismatch")
	}
}

func TestToStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("%w: title is required", errs.ErrValidation), codes.InvalidArgument},
		{errs.ErrNotFound, codes.NotFound},
		{errs.ErrUnauthorized, codes.Unauthenticated},
		{fmt.Errorf("repo: %w", errs.ErrForbidden), codes.PermissionDenied},
		{errs.ErrAlreadyExists, codes.AlreadyExists},
		{errs.ErrRateLimited, codes.ResourceExhausted},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("db down"), codes.Internal},
		{status.Error(codes.Unavailable, "x"), codes.Unavailable},
	}
	for i, c := range cases {
		if got := status.Code(ToStatus("op", c.err)); got != c.want {
			t.Fatalf("case %d: code=%s want %s", i, got, c.want)
		}
	}
	if ToStatus("op", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	if st := status.Convert(ToStatus("create", errors.New("secret dsn"))); st.Message() != "create failed" {
		t.Fatalf("internal details leaked: %q", st.Message())
	}
}

func TestFromStatus(t *testing.T) {
	t.Parallel()

	err := FromStatus(status.Error(codes.PermissionDenied, "permission denied"))
	if !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	err = FromStatus(status.Error(codes.InvalidArgument, "validation failed: title is required"))
	if !errors.Is(err, errs.ErrValidation) || err.Error() != "validation failed: title is required" {
		t.Fatalf("got %v", err)
	}
	un := status.Error(codes.Unavailable, "conn refused")
	if FromStatus(un) != un {
		t.Fatalf("unmapped code must be returned unchanged")
	}
	plain := errors.New("plain")
	if FromStatus(plain) != plain {
		t.Fatalf("non-status error must be returned unchanged")
	}
}
