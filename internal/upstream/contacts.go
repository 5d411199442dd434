package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"fakturo/internal/contact"
	"fakturo/internal/platform/config"
	platformredis "fakturo/internal/platform/redis"
	"fakturo/pkg/platform/circuit"
	"fakturo/pkg/platform/sentinel"
)

// probeInterval is how often one request is let through while the contact
// search breaker is open.
const probeInterval = 30 * time.Second

// ContactSearcher queries the upstream contact index. Searches are advisory
// (duplicate hints), so the searcher fails fast behind a circuit breaker and
// serves recent results from Redis when available.
type ContactSearcher struct {
	client  *Client
	breaker *circuit.Breaker
	cache   *platformredis.Client
	ttl     time.Duration

	mu        sync.Mutex
	lastProbe time.Time
}

// NewContactSearcher creates a searcher on the shared transport. cache may be
// nil when Redis is not configured.
func NewContactSearcher(client *Client, cache *platformredis.Client) *ContactSearcher {
	return &ContactSearcher{
		client:  client,
		breaker: circuit.New("contact-search"),
		cache:   cache,
		ttl:     config.SearchCacheTTL,
	}
}

// Search implements contact.Searcher.
func (s *ContactSearcher) Search(ctx context.Context, query string, limit int) ([]contact.Contact, error) {
	key := searchCacheKey(query, limit)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	if s.breaker.IsOpen() && !s.allowProbe() {
		return nil, sentinel.ErrCircuitOpen
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var resp struct {
		Contacts []contact.Contact `json:"contacts"`
	}
	if err := s.client.do(ctx, "GET", "/v1/contacts/search", q, nil, &resp); err != nil {
		s.breaker.RecordFailure()
		return nil, err
	}
	s.breaker.RecordSuccess()

	s.cacheSet(ctx, key, resp.Contacts)
	return resp.Contacts, nil
}

// List returns one page of the contact book, optionally narrowed by a free
// text query. Listing is a primary operation, so it bypasses the advisory
// search breaker and cache.
func (s *ContactSearcher) List(ctx context.Context, query string, limit, offset int) ([]contact.Contact, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	if query != "" {
		q.Set("q", query)
	}

	var resp struct {
		Contacts []contact.Contact `json:"contacts"`
	}
	if err := s.client.do(ctx, "GET", "/v1/contacts", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Contacts, nil
}

// allowProbe lets one request through per probeInterval while the breaker is
// open, so a recovered upstream can close it again.
func (s *ContactSearcher) allowProbe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if time.Since(s.lastProbe) < probeInterval {
		return false
	}
	s.lastProbe = time.Now()
	return true
}

func (s *ContactSearcher) cacheGet(ctx context.Context, key string) ([]contact.Contact, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var contacts []contact.Contact
	if err := json.Unmarshal(raw, &contacts); err != nil {
		return nil, false
	}
	return contacts, true
}

func (s *ContactSearcher) cacheSet(ctx context.Context, key string, contacts []contact.Contact) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(contacts)
	if err != nil {
		return
	}
	// Cache write failures are ignored; the next search just goes upstream.
	s.cache.Set(ctx, key, raw, s.ttl)
}

func searchCacheKey(query string, limit int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("fakturo:contact-search:%s:%d", hex.EncodeToString(sum[:8]), limit)
}
