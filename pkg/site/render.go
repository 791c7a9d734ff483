package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/tstromberg/smokypeaks/pkg/contact"
	"github.com/tstromberg/smokypeaks/pkg/gallery"
	"github.com/tstromberg/smokypeaks/pkg/planner"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets/style.css
var styleText string

var templates = template.Must(template.New("site").Funcs(tmplFunctions()).ParseFS(templateFS, "templates/*.tmpl"))

type preview struct {
	Property Property
	Cabin    *Cabin
	Cover    gallery.ImageRef
	Features []string
}

type lightboxView struct {
	Index   int
	Image   gallery.ImageRef
	Counter string
}

type cabinView struct {
	Property Property
	Cabin    *Cabin
	Images   []gallery.ImageRef
	Cap      int
	Current  int
	Showing  bool
	Counter  string
	Paused   bool
	Lightbox *lightboxView
}

type view struct {
	SiteTitle   string
	Title       string
	Page        Page
	Pages       []Page
	Style       template.CSS
	Static      bool
	Hero        gallery.ImageRef
	Previews    []preview
	Cabin       *cabinView
	Attractions []Attraction
	Posts       []BlogPost
	Post        *BlogPost
	Planner     planner.State
	Contact     contact.State
}

// newView snapshots everything the current page of s shows.
func (srv *Server) newView(s *Session) (*view, error) {
	p := s.Page()
	v := &view{
		SiteTitle: srv.cfg.Title,
		Title:     p.Title(),
		Page:      p,
		Pages:     Pages,
		Style:     template.CSS(styleText),
	}

	switch p {
	case PageHome:
		v.Hero = s.Hero()
		for _, prop := range Properties {
			cb := srv.content.Cabin(prop)
			cover, _ := s.Gallery(prop).Collection().Cover()
			v.Previews = append(v.Previews, preview{Property: prop, Cabin: cb, Cover: cover, Features: take(3, cb.Features)})
		}
	case PageAngelHeights, PageAngelRise:
		prop, _ := p.Property()
		v.Cabin = cabinSnapshot(prop, srv.content.Cabin(prop), s.Gallery(prop))
		v.Attractions = srv.content.Attractions
	case PageBlog:
		if id := s.PostID(); id != "" {
			post, err := s.Post(id)
			if err != nil {
				return nil, err
			}
			v.Post = &post
			v.Title = fmt.Sprintf("%s | Smoky Peaks Blog", post.Title)
		} else {
			v.Posts = s.Posts()
		}
	case PagePlanner:
		v.Planner = s.Planner().State()
	case PageContact:
		v.Contact = s.Desk().State()
	default:
		return nil, fmt.Errorf("page %d: %w", p, ErrNotFound)
	}
	return v, nil
}

func cabinSnapshot(prop Property, cb *Cabin, m *gallery.Manager) *cabinView {
	cv := &cabinView{
		Property: prop,
		Cabin:    cb,
		Images:   m.Collection().Images(),
		Cap:      m.Collection().Cap(),
	}
	if c := m.Carousel(); c != nil {
		cv.Current, cv.Showing = c.Current()
		// the collection may have shrunk since Images was copied
		if cv.Current >= len(cv.Images) {
			cv.Current, cv.Showing = 0, false
		}
		cv.Counter = c.Counter()
		cv.Paused = c.Paused()
	}
	if l := m.Lightbox(); l != nil {
		if i, ok := l.Current(); ok {
			img, _ := l.Image()
			cv.Lightbox = &lightboxView{Index: i, Image: img, Counter: l.Counter()}
		}
	}
	return cv
}

func render(v *view) ([]byte, error) {
	name := v.Page.String() + ".tmpl"
	var tpl bytes.Buffer
	if err := templates.ExecuteTemplate(&tpl, name, v); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return tpl.Bytes(), nil
}

func take(n int, s []string) []string {
	if len(s) < n {
		n = len(s)
	}
	return s[:n]
}

// safeSrc lets uploaded data URLs through html/template, which would
// otherwise replace them. Anything unexpected becomes an empty link.
func safeSrc(r gallery.ImageRef) template.URL {
	s := string(r)
	switch {
	case strings.HasPrefix(s, "data:image/"),
		strings.HasPrefix(s, "https://"),
		strings.HasPrefix(s, "http://"),
		strings.HasPrefix(s, "/"):
		return template.URL(s)
	}
	return template.URL("#")
}

// tmplFunctions are functions available to our templates.
func tmplFunctions() template.FuncMap {
	return template.FuncMap{
		"Src": safeSrc,
		"SrcString": func(s string) template.URL {
			return safeSrc(gallery.ImageRef(s))
		},
		"Inc": func(i int) int {
			return i + 1
		},
		"Paragraphs": Paragraphs,
		"Take":       take,
		"Join":       strings.Join,
		"Dict": func(kv ...any) map[string]any {
			m := map[string]any{}
			for i := 0; i+1 < len(kv); i += 2 {
				if k, ok := kv[i].(string); ok {
					m[k] = kv[i+1]
				}
			}
			return m
		},
	}
}
