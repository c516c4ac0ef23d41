// Package convert maps between domain models and wire messages, and between
// domain errors and gRPC status codes.
package convert

import (
	"fmt"

	"github.com/and161185/factshare/internal/errs"
	model "github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/rpc"
	u "github.com/gofrs/uuid/v5"
)

// --- helpers ---

func idString(id u.UUID) string {
	if id == u.Nil {
		return ""
	}
	return id.String()
}

func parseID(s string) (u.UUID, error) {
	if s == "" {
		return u.Nil, nil
	}
	id, err := u.FromString(s)
	if err != nil {
		return u.Nil, fmt.Errorf("%w: bad id %q", errs.ErrValidation, s)
	}
	return id, nil
}

// ParseFactID parses a required fact id.
func ParseFactID(s string) (u.UUID, error) {
	id, err := parseID(s)
	if err != nil {
		return u.Nil, err
	}
	if id == u.Nil {
		return u.Nil, fmt.Errorf("%w: empty id", errs.ErrValidation)
	}
	return id, nil
}

// --- users ---

// ToRPCUser converts a stored user to its public wire form.
func ToRPCUser(usr model.User) rpc.User {
	return rpc.User{ID: idString(usr.ID), Name: usr.Name, Email: usr.Email}
}

// FromRPCUser converts a wire user to a client session.
func FromRPCUser(in rpc.User) (model.Session, error) {
	id, err := parseID(in.ID)
	if err != nil {
		return model.Session{}, err
	}
	if id == u.Nil {
		return model.Session{}, fmt.Errorf("%w: user without id", errs.ErrValidation)
	}
	return model.Session{ID: id, Name: in.Name, Email: in.Email}, nil
}

// --- facts ---

// ToRPCFact converts a domain fact to wire form.
func ToRPCFact(f model.Fact) rpc.Fact {
	return rpc.Fact{
		ID:       idString(f.ID),
		Title:    f.Title,
		Content:  f.Content,
		Category: string(f.Category),
		Author: rpc.User{
			ID:    idString(f.Author.ID),
			Name:  f.Author.Name,
			Email: f.Author.Email,
		},
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ToRPCFacts converts a slice of facts preserving order.
func ToRPCFacts(in []model.Fact) []rpc.Fact {
	out := make([]rpc.Fact, 0, len(in))
	for _, f := range in {
		out = append(out, ToRPCFact(f))
	}
	return out
}

// FromRPCFact converts a wire fact to the domain model. Absent fields stay zero.
func FromRPCFact(in rpc.Fact) (model.Fact, error) {
	id, err := parseID(in.ID)
	if err != nil {
		return model.Fact{}, err
	}
	aid, err := parseID(in.Author.ID)
	if err != nil {
		return model.Fact{}, err
	}
	return model.Fact{
		ID:        id,
		Title:     in.Title,
		Content:   in.Content,
		Category:  model.Category(in.Category),
		Author:    model.Author{ID: aid, Name: in.Author.Name, Email: in.Author.Email},
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
	}, nil
}

// FromRPCFacts converts a slice of wire facts preserving order.
func FromRPCFacts(in []rpc.Fact) ([]model.Fact, error) {
	out := make([]model.Fact, 0, len(in))
	for i, f := range in {
		mf, err := FromRPCFact(f)
		if err != nil {
			return nil, fmt.Errorf("fact %d: %w", i, err)
		}
		out = append(out, mf)
	}
	return out, nil
}

// --- requests ---

// ToRPCOrder maps a listing order to its wire value.
func ToRPCOrder(o model.Order) string {
	if o == model.OldestFirst {
		return rpc.OrderAsc
	}
	return rpc.OrderDesc
}

// FromRPCOrder maps a wire order; anything but "asc" means newest first.
func FromRPCOrder(s string) model.Order {
	if s == rpc.OrderAsc {
		return model.OldestFirst
	}
	return model.NewestFirst
}

// ToRPCCreate converts a draft to a create request.
func ToRPCCreate(d model.FactDraft) *rpc.CreateFactRequest {
	return &rpc.CreateFactRequest{Title: d.Title, Content: d.Content, Category: string(d.Category)}
}

// FromRPCCreate converts a create request to a draft.
func FromRPCCreate(in *rpc.CreateFactRequest) model.FactDraft {
	return model.FactDraft{Title: in.Title, Content: in.Content, Category: model.Category(in.Category)}
}

// ToRPCUpdate converts a patch to an update request for id.
func ToRPCUpdate(id u.UUID, p model.FactPatch) *rpc.UpdateFactRequest {
	req := &rpc.UpdateFactRequest{ID: idString(id), Title: p.Title, Content: p.Content}
	if p.Category != nil {
		c := string(*p.Category)
		req.Category = &c
	}
	return req
}

// FromRPCUpdate converts an update request to (id, patch).
func FromRPCUpdate(in *rpc.UpdateFactRequest) (u.UUID, model.FactPatch, error) {
	id, err := ParseFactID(in.ID)
	if err != nil {
		return u.Nil, model.FactPatch{}, err
	}
	p := model.FactPatch{Title: in.Title, Content: in.Content}
	if in.Category != nil {
		c := model.Category(*in.Category)
		p.Category = &c
	}
	return id, p, nil
}
