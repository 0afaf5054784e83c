package feed

import (
	"encoding/xml"
	"time"

	"git.home.luguber.info/inful/popsite/internal/content"
)

const atomNS = "http://www.w3.org/2005/Atom"

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	NS      string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Links   []atomLink  `xml:"link"`
	Author  *atomPerson `xml:"author,omitempty"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomPerson struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomText struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	ID         string         `xml:"id"`
	Link       atomLink       `xml:"link"`
	Updated    string         `xml:"updated"`
	Author     *atomPerson    `xml:"author,omitempty"`
	Categories []atomCategory `xml:"category"`
	Content    atomText       `xml:"content"`
}

// Atom renders posts as an Atom 1.0 document, newest first.
func Atom(info Info, posts []*content.Post, opts Options) ([]byte, error) {
	if err := info.validate(); err != nil {
		return nil, err
	}
	posts = prepare(posts, opts)

	doc := atomFeed{
		NS:      atomNS,
		Title:   info.Title,
		ID:      info.abs(""),
		Updated: updatedAt(info, posts).Format(time.RFC3339),
		Links:   []atomLink{{Href: info.abs("")}},
	}
	if info.Path != "" {
		doc.Links = append(doc.Links, atomLink{Href: info.abs(info.Path), Rel: "self"})
	}
	if info.Author != "" {
		doc.Author = &atomPerson{Name: info.Author}
	}

	for _, p := range posts {
		link := info.abs(p.URL)
		e := atomEntry{
			Title:   p.Title,
			ID:      link,
			Link:    atomLink{Href: link},
			Updated: p.Date.UTC().Format(time.RFC3339),
			Content: atomText{Type: "html", Body: body(p, opts)},
		}
		if p.Author != "" {
			e.Author = &atomPerson{Name: p.Author}
		}
		for _, t := range p.Tags {
			e.Categories = append(e.Categories, atomCategory{Term: t})
		}
		doc.Entries = append(doc.Entries, e)
	}
	return encode(doc)
}
