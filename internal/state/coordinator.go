package state

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/five82/gifbox/internal/gif"
	"github.com/five82/gifbox/internal/giphy"
)

// FavoritesStream is a live sequence of favorites lists.
type FavoritesStream interface {
	C() <-chan []gif.Item
	Err() error
	Close()
}

// Repository performs the network and persistence work the coordinator
// delegates.
type Repository interface {
	FetchTrending(ctx context.Context, page gif.Page) ([]gif.Item, error)
	Search(ctx context.Context, query string, page gif.Page) ([]gif.Item, error)
	ObserveFavorites(ctx context.Context) (FavoritesStream, error)
	SetFavorite(ctx context.Context, item gif.Item) error
}

const (
	defaultPageSize = 25
	mailboxSize     = 16
)

// Options configure a Coordinator.
type Options struct {
	Logger            zerolog.Logger
	PageSize          int               // zero uses 25
	Resubscribe       ResubscribePolicy // favorites stream error handling
	ResubscribeBase   time.Duration     // first resubscribe delay; zero uses 2s
	SkipInitialLoad   bool              // do not issue LoadTrending from New
	Store             *Store            // nil allocates a new Store
	RequestIDProvider func() string     // nil uses UUIDv7
}

// Coordinator owns the view state. A single goroutine applies every change;
// public methods only enqueue messages and never block on the network.
type Coordinator struct {
	repo       Repository
	store      *Store
	log        zerolog.Logger
	pageSize   int
	policy     ResubscribePolicy
	resubBase  time.Duration
	newRequest func() string
	inbox      *mailbox[message]
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// message is anything the run loop applies.
type message interface{}

type loadMsg struct {
	mode  Mode
	query string
}

type loadMoreMsg struct{}

type refreshMsg struct{}

type fetchDoneMsg struct {
	generation uint64
	mode       Mode
	query      string
	page       gif.Page
	appending  bool
	items      []gif.Item
	err        error
	requestID  string
}

type favoritesMsg struct {
	stream FavoritesStream
	items  []gif.Item
}

type favoritesEndedMsg struct {
	stream FavoritesStream
	err    error
}

type subscribeMsg struct{}

type setFavoriteMsg struct {
	item gif.Item
}

// loop-owned state
type coordinatorState struct {
	snap          Snapshot
	generation    uint64
	favorites     []gif.Item
	favoritesSeen bool
	stream        FavoritesStream
	failures      int
	nextPage      gif.Page
}

// New starts a coordinator bound to ctx. It subscribes to favorites and,
// unless SkipInitialLoad is set, loads trending GIFs.
func New(ctx context.Context, repo Repository, opts Options) *Coordinator {
	cctx, cancel := context.WithCancel(ctx)
	c := &Coordinator{
		repo:       repo,
		store:      opts.Store,
		log:        opts.Logger,
		pageSize:   opts.PageSize,
		policy:     opts.Resubscribe,
		resubBase:  opts.ResubscribeBase,
		newRequest: opts.RequestIDProvider,
		ctx:        cctx,
		cancel:     cancel,
	}
	if c.store == nil {
		c.store = &Store{}
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	if c.resubBase <= 0 {
		c.resubBase = defaultResubscribeBase
	}
	if c.newRequest == nil {
		c.newRequest = func() string { return uuid.Must(uuid.NewV7()).String() }
	}
	c.inbox = newMailbox[message](cctx, mailboxSize)

	st := &coordinatorState{snap: Snapshot{Status: StatusLoading}}
	st.snap = c.store.Publish(st.snap)

	c.subscribe(st)
	if !opts.SkipInitialLoad {
		c.startLoad(st, loadMsg{mode: ModeTrending})
	}

	c.wg.Add(1)
	go c.run(st)
	return c
}

// LoadTrending replaces the results with trending GIFs.
func (c *Coordinator) LoadTrending() {
	c.post(loadMsg{mode: ModeTrending})
}

// Search replaces the results with GIFs matching query. The query is passed
// to the repository as given and recorded verbatim on success.
func (c *Coordinator) Search(query string) {
	c.post(loadMsg{mode: ModeSearch, query: query})
}

// LoadMore appends the next page of the current result list.
func (c *Coordinator) LoadMore() {
	c.post(loadMoreMsg{})
}

// Refresh repeats the current trending load or search.
func (c *Coordinator) Refresh() {
	c.post(refreshMsg{})
}

// SetFavorite hands item to the repository for persistence. The snapshot is
// not touched; the favorites stream reports the change.
func (c *Coordinator) SetFavorite(item gif.Item) {
	c.post(setFavoriteMsg{item: item})
}

// Snapshot returns the latest published snapshot.
func (c *Coordinator) Snapshot() Snapshot {
	return c.store.Snapshot()
}

// Watch returns a watcher primed with the latest snapshot.
func (c *Coordinator) Watch() *Watcher {
	return c.store.Watch()
}

// Close cancels in-flight work, releases the favorites subscription, waits
// for background goroutines, and closes all watchers.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.wg.Wait()
		c.store.Close()
	})
}

func (c *Coordinator) post(msg message) {
	if c.ctx.Err() != nil {
		return
	}
	if err := c.inbox.send(c.ctx, msg); err != nil {
		c.log.Debug().Err(err).Msg("coordinator closed; dropping request")
	}
}

func (c *Coordinator) run(st *coordinatorState) {
	defer c.wg.Done()
	defer func() {
		if st.stream != nil {
			st.stream.Close()
		}
	}()

	for {
		msg, err := c.inbox.receive()
		if err != nil {
			return
		}
		switch m := msg.(type) {
		case loadMsg:
			c.startLoad(st, m)
		case refreshMsg:
			if st.snap.Mode == ModeSearch {
				c.startLoad(st, loadMsg{mode: ModeSearch, query: st.snap.Query})
			} else {
				c.startLoad(st, loadMsg{mode: ModeTrending})
			}
		case loadMoreMsg:
			c.startLoadMore(st)
		case fetchDoneMsg:
			c.applyFetch(st, m)
		case favoritesMsg:
			c.applyFavorites(st, m)
		case favoritesEndedMsg:
			c.favoritesEnded(st, m)
		case subscribeMsg:
			c.subscribe(st)
		case setFavoriteMsg:
			c.setFavorite(m.item)
		}
	}
}

// setFavorite persists item off the loop. Only the run loop calls it, and the
// loop holds a WaitGroup slot until it exits.
func (c *Coordinator) setFavorite(item gif.Item) {
	if c.ctx.Err() != nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.repo.SetFavorite(c.ctx, item); err != nil {
			c.log.Error().Err(err).Str("id", item.ID).Bool("favorite", item.Favorite).Msg("set favorite failed")
		}
	}()
}

func (c *Coordinator) startLoad(st *coordinatorState, m loadMsg) {
	st.generation++
	next := st.snap
	next.Status = StatusLoading
	next.PageLoading = false
	next.Results = nil
	next.HasMore = false
	next.Err = nil
	c.publish(st, next)

	page := gif.Page{Limit: c.pageSize}
	c.fetch(fetchDoneMsg{generation: st.generation, mode: m.mode, query: m.query, page: page})
}

func (c *Coordinator) startLoadMore(st *coordinatorState) {
	if st.snap.Status != StatusReady || st.snap.PageLoading || !st.snap.HasMore {
		return
	}
	next := st.snap
	next.PageLoading = true
	c.publish(st, next)

	c.fetch(fetchDoneMsg{
		generation: st.generation,
		mode:       st.snap.Mode,
		query:      st.snap.Query,
		page:       st.nextPage,
		appending:  true,
	})
}

// fetch runs the repository call in its own goroutine and reports back
// through the inbox with the generation it was issued under.
func (c *Coordinator) fetch(req fetchDoneMsg) {
	req.requestID = c.newRequest()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx := giphy.WithRequestID(c.ctx, req.requestID)
		start := time.Now()
		if req.mode == ModeSearch {
			req.items, req.err = c.repo.Search(ctx, req.query, req.page)
		} else {
			req.items, req.err = c.repo.FetchTrending(ctx, req.page)
		}
		c.log.Debug().
			Str("request_id", req.requestID).
			Str("mode", req.mode.String()).
			Str("query", req.query).
			Int("offset", req.page.Offset).
			Int("count", len(req.items)).
			Dur("took", time.Since(start)).
			Err(req.err).
			Msg("fetch finished")
		_ = c.inbox.send(c.ctx, req)
	}()
}

func (c *Coordinator) applyFetch(st *coordinatorState, m fetchDoneMsg) {
	if m.generation != st.generation {
		c.log.Debug().Str("request_id", m.requestID).Uint64("generation", m.generation).
			Uint64("current", st.generation).Msg("dropping stale response")
		return
	}

	next := st.snap
	if m.appending {
		if !st.snap.PageLoading {
			return
		}
		next.PageLoading = false
		if m.err != nil {
			c.log.Warn().Err(m.err).Str("request_id", m.requestID).Msg("load more failed")
			next.Err = m.err
			next.ConsecutiveFailures++
			c.publish(st, next)
			return
		}
		next.Err = nil
		next.ConsecutiveFailures = 0
		next.Results = appendUnique(st.snap.Results, c.withFavorites(st, m.items))
		next.HasMore = len(m.items) >= m.page.Limit
		st.nextPage = m.page.Next(len(m.items))
		c.publish(st, next)
		return
	}

	next.Status = StatusReady
	if m.err != nil {
		// The cause is kept on the snapshot; results stay empty and the
		// previous query is left untouched.
		c.log.Warn().Err(m.err).Str("request_id", m.requestID).Str("mode", m.mode.String()).Msg("fetch failed")
		next.Results = nil
		next.HasMore = false
		next.Err = m.err
		next.ConsecutiveFailures++
		c.publish(st, next)
		return
	}
	next.Err = nil
	next.ConsecutiveFailures = 0
	next.Mode = m.mode
	if m.mode == ModeSearch {
		next.Query = m.query
	}
	next.Results = c.withFavorites(st, m.items)
	next.HasMore = len(m.items) >= m.page.Limit
	st.nextPage = m.page.Next(len(m.items))
	c.publish(st, next)
}

func (c *Coordinator) withFavorites(st *coordinatorState, items []gif.Item) []gif.Item {
	if !st.favoritesSeen {
		return gif.Clone(items)
	}
	return gif.ApplyFavorites(items, st.favorites)
}

func (c *Coordinator) applyFavorites(st *coordinatorState, m favoritesMsg) {
	if m.stream != st.stream {
		return
	}
	st.failures = 0
	st.favorites = gif.Clone(m.items)
	st.favoritesSeen = true

	next := st.snap
	next.Results = gif.ApplyFavorites(st.snap.Results, st.favorites)
	next.Favorites = gif.Clone(st.favorites)
	c.publish(st, next)
}

func (c *Coordinator) subscribe(st *coordinatorState) {
	stream, err := c.repo.ObserveFavorites(c.ctx)
	if err != nil {
		c.favoritesEnded(st, favoritesEndedMsg{err: err})
		return
	}
	st.stream = stream
	c.wg.Add(1)
	go c.pumpFavorites(stream)
}

// pumpFavorites forwards stream emissions to the run loop until the stream
// ends or the coordinator closes.
func (c *Coordinator) pumpFavorites(stream FavoritesStream) {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			stream.Close()
			return
		case items, ok := <-stream.C():
			if !ok {
				_ = c.inbox.send(c.ctx, favoritesEndedMsg{stream: stream, err: stream.Err()})
				return
			}
			if err := c.inbox.send(c.ctx, favoritesMsg{stream: stream, items: items}); err != nil {
				stream.Close()
				return
			}
		}
	}
}

func (c *Coordinator) favoritesEnded(st *coordinatorState, m favoritesEndedMsg) {
	if m.stream != nil && m.stream != st.stream {
		return
	}
	st.stream = nil
	if m.err == nil {
		c.log.Info().Msg("favorites stream closed")
		return
	}
	if c.policy == ResubscribeNever {
		c.log.Warn().Err(m.err).Msg("favorites stream failed; not resubscribing")
		return
	}

	delay := calculateBackoff(st.failures, c.resubBase)
	st.failures++
	c.log.Warn().Err(m.err).Dur("retry_in", delay).Int("failures", st.failures).Msg("favorites stream failed; resubscribing")
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-c.ctx.Done():
		case <-timer.C:
			_ = c.inbox.send(c.ctx, subscribeMsg{})
		}
	}()
}

func (c *Coordinator) publish(st *coordinatorState, next Snapshot) {
	st.snap = c.store.Publish(next)
}

func appendUnique(existing, more []gif.Item) []gif.Item {
	out := gif.Clone(existing)
	seen := make(map[string]struct{}, len(existing)+len(more))
	for _, item := range existing {
		seen[item.ID] = struct{}{}
	}
	for _, item := range more {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
