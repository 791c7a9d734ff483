// Package site serves the Smoky Peaks Cabins website: pages, per-visitor
// galleries, the trip planner and the contact form.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tstromberg/smokypeaks/pkg/contact"
	"github.com/tstromberg/smokypeaks/pkg/gallery"
	"github.com/tstromberg/smokypeaks/pkg/planner"
	"k8s.io/klog/v2"
)

// Server holds what every visitor shares.
type Server struct {
	cfg     Config
	content *Content
	gen     planner.Generator
	mailer  contact.Mailer
	decode  gallery.Decoder
	now     func() time.Time

	local    atomic.Pointer[map[Property][]string]
	sessions *Sessions
	cancel   context.CancelFunc
}

// NewServer returns a server for cfg. gen and mailer may be nil: without a
// generator every itinerary request fails, without a mailer contact
// messages only produce a mailto draft.
func NewServer(cfg Config, content *Content, gen planner.Generator, mailer contact.Mailer) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{
		cfg:     cfg,
		content: content,
		gen:     gen,
		mailer:  mailer,
		decode:  gallery.DecodeUpload,
		now:     time.Now,
		cancel:  cancel,
	}
	srv.sessions = newSessions(ctx, srv)
	return srv
}

// Sessions returns the visitor sessions.
func (srv *Server) Sessions() *Sessions {
	return srv.sessions
}

// SetPhotos replaces the local photo URLs that new sessions start with.
func (srv *Server) SetPhotos(m map[Property][]string) {
	klog.Infof("local photos updated: %d properties", len(m))
	srv.local.Store(&m)
}

func (srv *Server) defaults(p Property) []gallery.ImageRef {
	var local []string
	if m := srv.local.Load(); m != nil {
		local = (*m)[p]
	}
	return srv.content.DefaultImages(p, local)
}

// Close ends every session.
func (srv *Server) Close() {
	srv.sessions.Close()
	srv.cancel()
}

// Handler returns the site's routes.
func (srv *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/", srv.page(func(*http.Request) (Page, string) { return PageHome, "" }))
	r.With(uploadLimit()).Post("/hero", srv.uploadHero)

	r.Route("/cabins/{property}", func(r chi.Router) {
		r.Get("/", srv.cabinPage)
		r.Get("/state", srv.cabinState)
		r.With(uploadLimit()).Post("/photos", srv.cabinAction(func(s *Session, m *gallery.Manager, r *http.Request) {
			uploadPhoto(m, r)
		}))
		r.Post("/photos/{index}/{action}", srv.cabinAction(photoAction))
		r.Post("/lightbox/{action}", srv.cabinAction(lightboxAction))
		r.Post("/carousel/jump/{index}", srv.cabinAction(func(s *Session, m *gallery.Manager, r *http.Request) {
			i, err := strconv.Atoi(chi.URLParam(r, "index"))
			if c := m.Carousel(); c != nil && err == nil {
				c.JumpTo(i)
			}
		}))
		r.Post("/carousel/{action}", srv.cabinAction(carouselAction))
	})

	r.Get("/blog", srv.page(func(*http.Request) (Page, string) { return PageBlog, "" }))
	r.Get("/blog/{id}", srv.page(func(r *http.Request) (Page, string) { return PageBlog, chi.URLParam(r, "id") }))
	r.With(uploadLimit()).Post("/blog/{id}/image", srv.uploadPostImage)

	r.Get("/planner", srv.page(func(*http.Request) (Page, string) { return PagePlanner, "" }))
	r.Post("/planner", srv.plan)

	r.Get("/contact", srv.page(func(*http.Request) (Page, string) { return PageContact, "" }))
	r.Post("/contact", srv.submitContact)

	r.Get("/_/style.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		fmt.Fprint(w, styleText)
	})
	r.Handle("/metrics", promhttp.Handler())
	if srv.cfg.OutDir != "" {
		r.Handle("/photos/*", http.StripPrefix("/photos/", http.FileServer(http.Dir(srv.cfg.OutDir))))
	}
	return r
}

// ListenAndServe serves the site on the configured address until ctx is done.
func (srv *Server) ListenAndServe(ctx context.Context) error {
	hs := &http.Server{
		Addr:              srv.cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(sctx); err != nil {
			klog.Warningf("shutdown: %v", err)
		}
	}()

	klog.Infof("Listening on %s...", srv.cfg.Addr)
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		recordHTTPRequest(r.Method, route, status, time.Since(start))
		klog.V(2).Infof("%s %s -> %d (%s)", r.Method, r.URL.Path, status, time.Since(start))
	})
}

// page navigates the visitor to the page chosen by pick and renders it.
func (srv *Server) page(pick func(*http.Request) (Page, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := srv.sessions.Lookup(w, r)
		p, postID := pick(r)
		s.Navigate(p, postID)
		srv.write(w, s, http.StatusOK)
	}
}

func (srv *Server) write(w http.ResponseWriter, s *Session, status int) {
	v, err := srv.newView(s)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		klog.Errorf("view: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	bs, err := render(v)
	if err != nil {
		klog.Errorf("render %s: %v", v.Page, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(bs); err != nil {
		klog.V(1).Infof("write: %v", err)
	}
}

func property(w http.ResponseWriter, r *http.Request) (Property, bool) {
	prop, ok := ParseProperty(chi.URLParam(r, "property"))
	if !ok {
		http.NotFound(w, r)
	}
	return prop, ok
}

func (srv *Server) cabinPage(w http.ResponseWriter, r *http.Request) {
	prop, ok := property(w, r)
	if !ok {
		return
	}
	s := srv.sessions.Lookup(w, r)
	s.Navigate(prop.Page(), "")
	srv.write(w, s, http.StatusOK)
}

// cabinAction applies fn to the property's gallery, mounting the cabin
// page first, then sends the visitor back to it.
func (srv *Server) cabinAction(fn func(*Session, *gallery.Manager, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prop, ok := property(w, r)
		if !ok {
			return
		}
		s := srv.sessions.Lookup(w, r)
		s.Navigate(prop.Page(), "")
		fn(s, s.Gallery(prop), r)
		http.Redirect(w, r, prop.Page().Path(), http.StatusSeeOther)
	}
}

func uploadPhoto(m *gallery.Manager, r *http.Request) {
	f, _, err := formFile(r, "photo")
	if err != nil {
		klog.V(1).Infof("%s: no upload: %v", m.Name(), err)
		return
	}
	defer f.Close()
	m.HandleUpload(r.Context(), f)
}

// formOverhead leaves room for multipart framing around an upload.
const formOverhead = 64 << 10

// uploadLimit refuses upload bodies larger than one accepted image.
func uploadLimit() func(http.Handler) http.Handler {
	return middleware.RequestSize(gallery.MaxUploadBytes + formOverhead)
}

func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(gallery.MaxUploadBytes); err != nil {
		return nil, nil, fmt.Errorf("parse form: %w", err)
	}
	return r.FormFile(field)
}

func photoAction(_ *Session, m *gallery.Manager, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return
	}
	switch chi.URLParam(r, "action") {
	case "delete":
		m.HandleDelete(i)
	case "promote":
		m.HandlePromote(i)
	case "open":
		m.HandleClickThumbnail(i)
	}
}

func lightboxAction(s *Session, m *gallery.Manager, r *http.Request) {
	l := m.Lightbox()
	if l == nil {
		return
	}
	switch chi.URLParam(r, "action") {
	case "next":
		l.Next()
	case "prev":
		l.Prev()
	case "close":
		l.Close()
	case "key":
		s.Keyboard().Dispatch(gallery.Key(r.FormValue("key")))
	}
}

func carouselAction(_ *Session, m *gallery.Manager, r *http.Request) {
	c := m.Carousel()
	if c == nil {
		return
	}
	switch chi.URLParam(r, "action") {
	case "next":
		c.Next()
	case "prev":
		c.Prev()
	case "pause":
		c.Pause()
	case "resume":
		c.Resume()
	case "click":
		c.Click()
	}
}

type carouselState struct {
	Index   int    `json:"index"`
	Showing bool   `json:"showing"`
	Counter string `json:"counter"`
	Paused  bool   `json:"paused"`
}

type lightboxState struct {
	Open    bool   `json:"open"`
	Index   int    `json:"index"`
	Counter string `json:"counter"`
}

type galleryState struct {
	Property string         `json:"property"`
	Images   int            `json:"images"`
	Cap      int            `json:"cap"`
	Mounted  bool           `json:"mounted"`
	Carousel *carouselState `json:"carousel,omitempty"`
	Lightbox *lightboxState `json:"lightbox,omitempty"`
}

// cabinState reports the gallery cursors so an open page can tell when to refresh.
func (srv *Server) cabinState(w http.ResponseWriter, r *http.Request) {
	prop, ok := property(w, r)
	if !ok {
		return
	}
	s := srv.sessions.Lookup(w, r)
	m := s.Gallery(prop)

	st := galleryState{
		Property: prop.ID(),
		Images:   m.Collection().Len(),
		Cap:      m.Collection().Cap(),
		Mounted:  m.Mounted(),
	}
	if c := m.Carousel(); c != nil {
		i, showing := c.Current()
		st.Carousel = &carouselState{Index: i, Showing: showing, Counter: c.Counter(), Paused: c.Paused()}
	}
	if l := m.Lightbox(); l != nil {
		i, open := l.Current()
		st.Lightbox = &lightboxState{Open: open, Index: i, Counter: l.Counter()}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		klog.V(1).Infof("state encode: %v", err)
	}
}

func (srv *Server) uploadHero(w http.ResponseWriter, r *http.Request) {
	s := srv.sessions.Lookup(w, r)
	s.Navigate(PageHome, "")
	if f, _, err := formFile(r, "photo"); err == nil {
		s.SetHero(r.Context(), f)
		f.Close()
	}
	http.Redirect(w, r, PageHome.Path(), http.StatusSeeOther)
}

func (srv *Server) uploadPostImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s := srv.sessions.Lookup(w, r)
	s.Navigate(PageBlog, id)
	if f, _, err := formFile(r, "photo"); err == nil {
		_, err := s.SetPostImage(r.Context(), id, f)
		f.Close()
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
	}
	http.Redirect(w, r, "/blog/"+id, http.StatusSeeOther)
}

func (srv *Server) plan(w http.ResponseWriter, r *http.Request) {
	s := srv.sessions.Lookup(w, r)
	s.Navigate(PagePlanner, "")
	err := s.Planner().Plan(r.Context(), r.FormValue("interest"))
	switch {
	case errors.Is(err, planner.ErrBusy):
		srv.write(w, s, http.StatusConflict)
		return
	case err != nil:
		klog.V(1).Infof("plan: %v", err)
	}
	http.Redirect(w, r, PagePlanner.Path(), http.StatusSeeOther)
}

func (srv *Server) submitContact(w http.ResponseWriter, r *http.Request) {
	s := srv.sessions.Lookup(w, r)
	s.Navigate(PageContact, "")
	f := contact.Form{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Question: r.FormValue("question"),
	}
	if _, err := s.Desk().Submit(r.Context(), f); err != nil {
		klog.V(1).Infof("contact: %v", err)
		srv.write(w, s, http.StatusUnprocessableEntity)
		return
	}
	http.Redirect(w, r, PageContact.Path(), http.StatusSeeOther)
}
