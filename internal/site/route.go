package site

import (
	"fmt"
	"net/url"
	"strings"
)

// Page identifies one screen of the site.
type Page string

const (
	PageHome         Page = "home"
	PageAbout        Page = "about"
	PageServices     Page = "services"
	PageContact      Page = "contact"
	PageConfirmation Page = "confirmation"
)

// NavPages are the pages linked from the header, in order.
var NavPages = []Page{PageHome, PageAbout, PageServices, PageContact}

// Title is the label used in navigation.
func (p Page) Title() string {
	switch p {
	case PageHome:
		return "Home"
	case PageAbout:
		return "About"
	case PageServices:
		return "Services"
	case PageContact:
		return "Contact"
	case PageConfirmation:
		return "Thank you"
	}
	return string(p)
}

func (p Page) valid() bool {
	switch p {
	case PageHome, PageAbout, PageServices, PageContact, PageConfirmation:
		return true
	}
	return false
}

// Route is a page plus its query string.
type Route struct {
	Page  Page
	Query url.Values
}

// ParseRoute parses "page?key=value". An empty string is the home page.
func ParseRoute(s string) (Route, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return Route{}, fmt.Errorf("invalid route %q: %w", s, err)
	}
	page := Page(strings.Trim(u.Path, "/"))
	if page == "" {
		page = PageHome
	}
	if !page.valid() {
		return Route{}, fmt.Errorf("unknown page: %s", page)
	}
	return Route{Page: page, Query: u.Query()}, nil
}

// MustRoute is ParseRoute for literals.
func MustRoute(s string) Route {
	r, err := ParseRoute(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Route) String() string {
	if len(r.Query) == 0 {
		return string(r.Page)
	}
	return string(r.Page) + "?" + r.Query.Encode()
}
