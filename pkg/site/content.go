package site

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tstromberg/smokypeaks/pkg/gallery"
)

//go:embed content.toml
var contentText string

// ErrNotFound is returned for unknown pages, properties and posts.
var ErrNotFound = errors.New("not found")

// Section is one titled block of a cabin description.
type Section struct {
	Title   string `toml:"title"`
	Content string `toml:"content"`
}

// Cabin is the static description of a property.
type Cabin struct {
	ID          string    `toml:"id"`
	Name        string    `toml:"name"`
	Badge       string    `toml:"badge"`
	Tagline     string    `toml:"tagline"`
	Summary     string    `toml:"summary"`
	Description string    `toml:"description"`
	Features    []string  `toml:"features"`
	Sections    []Section `toml:"sections"`
	BookingURL  string    `toml:"booking_url"`
	Images      []string  `toml:"images"`
}

// Attraction is a nearby place worth the drive.
type Attraction struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Distance    string `toml:"distance"`
	Image       string `toml:"image"`
}

// BlogPost is an article. Image is its only field a visitor can change.
type BlogPost struct {
	ID       string `toml:"id"`
	Title    string `toml:"title"`
	Excerpt  string `toml:"excerpt"`
	Content  string `toml:"content"`
	Date     string `toml:"date"`
	Category string `toml:"category"`
	Author   string `toml:"author"`
	Image    string `toml:"image"`
}

// Content is everything the site says that is not visitor state.
type Content struct {
	Hero        string       `toml:"hero"`
	Attractions []Attraction `toml:"attractions"`
	Cabins      []*Cabin     `toml:"cabins"`
	Posts       []BlogPost   `toml:"posts"`
}

// LoadContent parses the built-in site copy.
func LoadContent() (*Content, error) {
	return parseContent(contentText)
}

func parseContent(s string) (*Content, error) {
	c := &Content{}
	md, err := toml.Decode(s, c)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if u := md.Undecoded(); len(u) > 0 {
		return nil, fmt.Errorf("unknown content keys: %v", u)
	}
	for _, p := range Properties {
		if c.Cabin(p) == nil {
			return nil, fmt.Errorf("missing cabin %q", p.ID())
		}
	}
	return c, nil
}

// Cabin returns the description of p, or nil.
func (c *Content) Cabin(p Property) *Cabin {
	for _, cb := range c.Cabins {
		if cb.ID == p.ID() {
			return cb
		}
	}
	return nil
}

// Post returns the post with the given id.
func (c *Content) Post(id string) (BlogPost, error) {
	for _, p := range c.Posts {
		if p.ID == id {
			return p, nil
		}
	}
	return BlogPost{}, fmt.Errorf("post %q: %w", id, ErrNotFound)
}

// DefaultImages returns the images a new visitor sees for p: local photos
// first, then the built-in ones.
func (c *Content) DefaultImages(p Property, local []string) []gallery.ImageRef {
	refs := []gallery.ImageRef{}
	for _, s := range local {
		refs = append(refs, gallery.ImageRef(s))
	}
	if cb := c.Cabin(p); cb != nil {
		for _, s := range cb.Images {
			refs = append(refs, gallery.ImageRef(s))
		}
	}
	return refs
}

// Paragraph is a block of post text. Heading is set for **bold** lines.
type Paragraph struct {
	Heading string
	Text    string
}

// Paragraphs splits post content on blank lines, pulling out bold headings.
func Paragraphs(s string) []Paragraph {
	ps := []Paragraph{}
	for _, block := range strings.Split(s, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		p := Paragraph{}
		first, rest, _ := strings.Cut(block, "\n")
		if h, ok := boldLine(first); ok {
			p.Heading = h
			block = strings.TrimSpace(rest)
		}
		p.Text = block
		ps = append(ps, p)
	}
	return ps
}

func boldLine(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 4 && strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**") {
		return strings.TrimSpace(s[2 : len(s)-2]), true
	}
	return "", false
}
