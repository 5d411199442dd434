package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fakturo/internal/platform/metrics"
	"fakturo/pkg/domain"
)

// searchLimit bounds each lookup pass. Duplicate detection is advisory; a
// handful of candidates per criterion is plenty.
const searchLimit = 10

// Searcher is the upstream contact-search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Contact, error)
}

// Detector flags existing contacts that likely represent the same real-world
// entity as a form being edited. Matching is a cheap heuristic on exact
// fields; there is deliberately no fuzzy matching.
type Detector struct {
	search  Searcher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Detector.
type Option func(*Detector)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Detector) {
		d.metrics = m
	}
}

// NewDetector creates a Detector over the given search collaborator.
func NewDetector(search Searcher, opts ...Option) (*Detector, error) {
	if search == nil {
		return nil, fmt.Errorf("contact searcher is required")
	}
	d := &Detector{search: search}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// FindDuplicates runs up to three lookup passes over existing contacts and
// returns likely duplicates in pass-priority order: VAT number first, then
// email, then name+country. A contact appears at most once, attributed to the
// highest-priority pass that matched it; within a pass the upstream order is
// preserved.
//
// This is best-effort advisory logic: a failed pass is treated as "no matches
// for that pass" and logged, never surfaced to the caller.
func (d *Detector) FindDuplicates(ctx context.Context, form Form, exclude domain.ContactID) []PotentialDuplicate {
	if skipCheck(form) {
		return nil
	}

	if d.metrics != nil {
		d.metrics.DuplicateChecks.Inc()
	}

	vatPass := form.VATNumber != ""
	emailPass := form.Email != "" && strings.Contains(form.Email, "@")
	namePass := len(form.Name) >= 3 && form.Country != ""

	var vatMatches, emailMatches, nameMatches []Contact
	g, gctx := errgroup.WithContext(ctx)

	if vatPass {
		g.Go(func() error {
			vatMatches = d.lookup(gctx, "vat_number", form.VATNumber, func(c Contact) bool {
				return c.VATNumber == form.VATNumber
			})
			return nil
		})
	}
	if emailPass {
		g.Go(func() error {
			emailMatches = d.lookup(gctx, "email", form.Email, func(c Contact) bool {
				return strings.EqualFold(c.Email, form.Email)
			})
			return nil
		})
	}
	if namePass {
		g.Go(func() error {
			nameMatches = d.lookup(gctx, "name_and_country", form.Name, func(c Contact) bool {
				return strings.EqualFold(c.Name, form.Name) && strings.EqualFold(c.Country, form.Country)
			})
			return nil
		})
	}

	// Pass goroutines never return errors; Wait only orders completion.
	_ = g.Wait()

	seen := map[domain.ContactID]struct{}{exclude: {}}
	var result []PotentialDuplicate
	collect := func(matches []Contact, reason domain.MatchReason) {
		for _, c := range matches {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			result = append(result, PotentialDuplicate{Contact: c, Reason: reason})
			if d.metrics != nil {
				d.metrics.DuplicatesFound.WithLabelValues(reason.String()).Inc()
			}
		}
	}
	collect(vatMatches, domain.MatchVATNumber)
	collect(emailMatches, domain.MatchEmail)
	collect(nameMatches, domain.MatchNameAndCountry)

	return result
}

// skipCheck suppresses lookups on near-empty forms to avoid noisy queries
// while the user has barely started typing.
func skipCheck(form Form) bool {
	return len(form.Name) < 2 && form.Email == "" && form.VATNumber == ""
}

func (d *Detector) lookup(ctx context.Context, pass, query string, keep func(Contact) bool) []Contact {
	start := time.Now()
	candidates, err := d.search.Search(ctx, query, searchLimit)
	d.metrics.ObserveLookupLatency(pass, time.Since(start))

	if err != nil {
		// No information available; the other passes still count.
		if d.logger != nil {
			d.logger.DebugContext(ctx, "duplicate lookup pass failed",
				"pass", pass,
				"error", err,
			)
		}
		return nil
	}

	var matches []Contact
	for _, c := range candidates {
		if keep(c) {
			matches = append(matches, c)
		}
	}
	return matches
}
