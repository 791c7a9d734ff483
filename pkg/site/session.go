package site

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tstromberg/smokypeaks/pkg/contact"
	"github.com/tstromberg/smokypeaks/pkg/gallery"
	"github.com/tstromberg/smokypeaks/pkg/planner"
	"k8s.io/klog/v2"
)

// CookieName holds the visitor's session id.
var CookieName = "smokypeaks_session"

// Session is one visitor's view of the site. Photo collections, the hero
// image and blog covers live as long as the session; carousels, the
// lightbox, the planner and the contact form live as long as their page.
type Session struct {
	id  string
	srv *Server

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	page      Page
	postID    string
	hero      gallery.ImageRef
	posts     []BlogPost
	keys      *gallery.Keyboard
	galleries map[Property]*gallery.Manager
	planner   *planner.Planner
	desk      *contact.Desk
	lastSeen  time.Time
	heroGen   gallery.Generation
}

func newSession(ctx context.Context, id string, srv *Server) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		id:        id,
		srv:       srv,
		ctx:       ctx,
		cancel:    cancel,
		page:      -1,
		hero:      gallery.ImageRef(srv.content.Hero),
		posts:     append([]BlogPost{}, srv.content.Posts...),
		keys:      &gallery.Keyboard{},
		galleries: map[Property]*gallery.Manager{},
		lastSeen:  srv.now(),
	}

	opts := gallery.Options{
		Interval: srv.cfg.CarouselInterval,
		Decode:   srv.decode,
		OnChange: func(name string, op gallery.Op) { recordGalleryChange(name, op.String()) },
	}
	for _, p := range Properties {
		coll := gallery.NewCollection(srv.cfg.ImageCap, srv.defaults(p)...)
		s.galleries[p] = gallery.NewManager(p.ID(), coll, s.keys, opts)
	}

	s.planner = planner.New(srv.gen, func(o planner.Outcome) { recordItinerary(string(o)) })
	s.desk = s.newDesk()
	return s
}

func (s *Session) newDesk() *contact.Desk {
	return contact.NewDesk(s.srv.cfg.ContactTo, s.srv.cfg.ContactResetDelay, s.srv.mailer)
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Page returns the page the visitor is on.
func (s *Session) Page() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Navigate switches to page p, tearing down the previous page's views.
// postID selects a blog post on the blog page; empty means the index.
func (s *Session) Navigate(p Page, postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.srv.now()

	if p == s.page {
		s.postID = postID
		return
	}
	klog.V(1).Infof("session %s: %s -> %s", s.id, s.page, p)
	s.leaveLocked()
	s.page = p
	s.postID = postID

	if prop, ok := p.Property(); ok {
		s.galleries[prop].Mount(s.ctx)
	}
}

// leaveLocked tears down whatever the current page mounted.
func (s *Session) leaveLocked() {
	if prop, ok := s.page.Property(); ok {
		s.galleries[prop].Unmount()
	}
	switch s.page {
	case PagePlanner:
		s.planner.Reset()
	case PageContact:
		s.desk.Close()
		s.desk = s.newDesk()
	case PageHome:
		s.heroGen.Invalidate()
	}
}

// Gallery returns the manager for prop.
func (s *Session) Gallery(prop Property) *gallery.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.galleries[prop]
}

// Keyboard returns the session's key dispatcher.
func (s *Session) Keyboard() *gallery.Keyboard {
	return s.keys
}

// Planner returns the trip planner.
func (s *Session) Planner() *planner.Planner {
	return s.planner
}

// Desk returns the contact form of the current visit to the contact page.
func (s *Session) Desk() *contact.Desk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desk
}

// Hero returns the home page banner image.
func (s *Session) Hero() gallery.ImageRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hero
}

// SetHero replaces the banner with an uploaded image. Unreadable files and
// uploads finishing after leaving the home page change nothing.
func (s *Session) SetHero(ctx context.Context, r io.Reader) bool {
	tok := s.heroGen.Token()
	ref, err := s.srv.decode(ctx, r)
	if err != nil {
		klog.V(1).Infof("session %s: ignoring hero upload: %v", s.id, err)
		return false
	}
	if !tok.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hero = ref
	return true
}

// Posts returns the session's copy of the blog posts.
func (s *Session) Posts() []BlogPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]BlogPost{}, s.posts...)
}

// PostID returns the blog post being read, or "" on the index.
func (s *Session) PostID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postID
}

// Post returns the post with id.
func (s *Session) Post(id string) (BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return BlogPost{}, fmt.Errorf("post %q: %w", id, ErrNotFound)
}

// SetPostImage replaces a post's cover with an uploaded image.
func (s *Session) SetPostImage(ctx context.Context, id string, r io.Reader) (bool, error) {
	if _, err := s.Post(id); err != nil {
		return false, err
	}
	ref, err := s.srv.decode(ctx, r)
	if err != nil {
		klog.V(1).Infof("session %s: ignoring cover upload for post %s: %v", s.id, id, err)
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i].Image = string(ref)
		}
	}
	return true, nil
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = s.srv.now()
	s.mu.Unlock()
}

func (s *Session) idle(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Close stops every timer the session owns.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.galleries {
		g.Unmount()
	}
	s.heroGen.Invalidate()
	s.planner.Reset()
	s.desk.Close()
	s.cancel()
}

// Sessions maps visitor cookies to sessions.
type Sessions struct {
	srv *Server
	ctx context.Context

	mu sync.Mutex
	m  map[string]*Session
}

func newSessions(ctx context.Context, srv *Server) *Sessions {
	return &Sessions{srv: srv, ctx: ctx, m: map[string]*Session{}}
}

// New starts a session that is not bound to any cookie.
func (ss *Sessions) New() *Session {
	return newSession(ss.ctx, uuid.NewString(), ss.srv)
}

// Lookup returns the visitor's session, starting one and setting its
// cookie when the request carries none.
func (ss *Sessions) Lookup(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(CookieName); err == nil {
		ss.mu.Lock()
		s, ok := ss.m[c.Value]
		ss.mu.Unlock()
		if ok {
			s.touch()
			return s
		}
	}

	s := ss.New()
	ss.mu.Lock()
	ss.m[s.id] = s
	n := len(ss.m)
	ss.mu.Unlock()
	RegisterMetrics()
	activeSessions.Set(float64(n))

	klog.V(1).Infof("new session %s (%d active)", s.id, n)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// Len returns the number of live sessions.
func (ss *Sessions) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.m)
}

// Reap closes and forgets sessions idle for longer than idle.
func (ss *Sessions) Reap(idle time.Duration) int {
	now := ss.srv.now()
	stale := []*Session{}

	ss.mu.Lock()
	for id, s := range ss.m {
		if s.idle(now) > idle {
			stale = append(stale, s)
			delete(ss.m, id)
		}
	}
	n := len(ss.m)
	ss.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	RegisterMetrics()
	activeSessions.Set(float64(n))
	if len(stale) > 0 {
		klog.Infof("reaped %d idle sessions, %d remain", len(stale), n)
	}
	return len(stale)
}

// RunReaper reaps idle sessions every interval until ctx is done.
func (ss *Sessions) RunReaper(ctx context.Context, idle time.Duration, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			ss.Reap(idle)
		}
	}
}

// Close ends every session.
func (ss *Sessions) Close() {
	ss.mu.Lock()
	all := ss.m
	ss.m = map[string]*Session{}
	ss.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
