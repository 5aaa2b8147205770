// Package search answers desktop shell search requests against the
// installed-titles index: matching terms, describing results and launching
// the selected title.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/0xADE/ade-steam-search/internal/indexer"
)

// ErrUnknownID is returned by Describe for an identifier the index does not hold.
var ErrUnknownID = errors.New("unknown result identifier")

// Launcher opens a URI with the desktop's default handler.
type Launcher interface {
	Launch(ctx context.Context, uri string) error
}

// ResultMeta is the display metadata for one result.
type ResultMeta struct {
	ID          string
	Name        string
	Description string
	Icon        string
}

// Provider implements matching, describing and activation over one index.
// It holds no mutable state and is safe for concurrent use.
type Provider struct {
	index    *indexer.Index
	store    Store
	launcher Launcher
	log      *slog.Logger
}

// NewProvider returns a provider serving index for store.
func NewProvider(index *indexer.Index, store Store, launcher Launcher, log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		index:    index,
		store:    store,
		launcher: launcher,
		log:      log,
	}
}

// Match returns the id of every entry whose name contains a term, compared
// case-insensitively. An entry matching several terms appears once per
// matching term. Order follows index iteration and is unspecified.
func (p *Provider) Match(terms []string) []string {
	results := []string{}
	if len(terms) == 0 {
		return results
	}

	lowered := make([]string, len(terms))
	for i, term := range terms {
		lowered[i] = strings.ToLower(term)
	}

	p.index.Each(func(id, name string) {
		nameLower := strings.ToLower(name)
		for i, term := range lowered {
			if strings.Contains(nameLower, term) {
				p.log.Debug("found game", "name", name, "id", id, "term", terms[i])
				results = append(results, id)
			}
		}
	})
	return results
}

// Describe returns metadata for ids in the same order. Every id must be in
// the index; otherwise ErrUnknownID is returned and no metadata at all.
func (p *Provider) Describe(ids []string) ([]ResultMeta, error) {
	metas := make([]ResultMeta, 0, len(ids))
	for _, id := range ids {
		name, ok := p.index.Name(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownID, id)
		}
		metas = append(metas, ResultMeta{
			ID:          id,
			Name:        name,
			Description: id,
			Icon:        p.store.IconFor(id),
		})
	}
	return metas, nil
}

// Activate launches id through the store's URI scheme. terms and timestamp
// are part of the shell contract and unused. Launch failures are logged only.
func (p *Provider) Activate(ctx context.Context, id string, terms []string, timestamp uint32) {
	uri := p.store.LaunchURIFor(id)
	p.log.Debug("activating result", "id", id, "uri", uri)
	if err := p.launcher.Launch(ctx, uri); err != nil {
		p.log.Warn("failed to launch", "id", id, "uri", uri, "error", err)
	}
}

// LaunchSearch opens the store's library view. Failures are logged only.
func (p *Provider) LaunchSearch(ctx context.Context, terms []string, timestamp uint32) {
	if p.store.LibraryURI == "" {
		return
	}
	if err := p.launcher.Launch(ctx, p.store.LibraryURI); err != nil {
		p.log.Warn("failed to open library", "uri", p.store.LibraryURI, "error", err)
	}
}
