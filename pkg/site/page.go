package site

// Page is one of the site's routes.
type Page int

const (
	PageHome Page = iota
	PageAngelHeights
	PageAngelRise
	PagePlanner
	PageBlog
	PageContact
)

// Pages lists every page in navigation order.
var Pages = []Page{PageHome, PageAngelHeights, PageAngelRise, PageBlog, PagePlanner, PageContact}

var pageIDs = map[Page]string{
	PageHome:         "home",
	PageAngelHeights: "angelheights",
	PageAngelRise:    "angelrise",
	PagePlanner:      "planner",
	PageBlog:         "blog",
	PageContact:      "contact",
}

var pageTitles = map[Page]string{
	PageHome:         "Smoky Peaks Cabins | Gatlinburg Luxury Cabin Rentals",
	PageAngelHeights: "Angel Heights Cabin | Historic Log Cabin in Gatlinburg, TN",
	PageAngelRise:    "Angel Rise Cabin | Mountain View Retreat Gatlinburg",
	PagePlanner:      "AI Trip Planner | Plan Your Smoky Mountain Vacation",
	PageBlog:         "Mountain Musings Blog | Gatlinburg & Smoky Mountains Guide",
	PageContact:      "Contact Us | Smoky Peaks Cabins Gatlinburg",
}

var pageLabels = map[Page]string{
	PageHome:         "Home",
	PageAngelHeights: "Angel Heights",
	PageAngelRise:    "Angel Rise",
	PagePlanner:      "Trip Planner",
	PageBlog:         "Blog",
	PageContact:      "Contact",
}

func (p Page) String() string {
	return pageIDs[p]
}

// Title is the document title of the page.
func (p Page) Title() string {
	return pageTitles[p]
}

// Label is the navigation label of the page.
func (p Page) Label() string {
	return pageLabels[p]
}

// Path is the URL path of the page.
func (p Page) Path() string {
	switch p {
	case PageHome:
		return "/"
	case PageAngelHeights, PageAngelRise:
		return "/cabins/" + p.String()
	}
	return "/" + p.String()
}

// Property returns the cabin shown on the page, if any.
func (p Page) Property() (Property, bool) {
	switch p {
	case PageAngelHeights:
		return AngelHeights, true
	case PageAngelRise:
		return AngelRise, true
	}
	return 0, false
}

// Property is one of the rentable cabins.
type Property int

const (
	AngelHeights Property = iota
	AngelRise
)

// Properties lists every cabin.
var Properties = []Property{AngelHeights, AngelRise}

// ID is the property's stable identifier, used in URLs and content.
func (p Property) ID() string {
	if p == AngelRise {
		return "angelrise"
	}
	return "angelheights"
}

func (p Property) String() string {
	return p.ID()
}

// Page returns the property's detail page.
func (p Property) Page() Page {
	if p == AngelRise {
		return PageAngelRise
	}
	return PageAngelHeights
}

// ParseProperty maps an identifier back to a property.
func ParseProperty(id string) (Property, bool) {
	for _, p := range Properties {
		if p.ID() == id {
			return p, true
		}
	}
	return 0, false
}

// PropertyIDs returns the identifiers of every property.
func PropertyIDs() []string {
	ids := []string{}
	for _, p := range Properties {
		ids = append(ids, p.ID())
	}
	return ids
}
