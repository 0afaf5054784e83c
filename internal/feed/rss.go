package feed

import (
	"encoding/xml"
	"time"

	"git.home.luguber.info/inful/popsite/internal/content"
)

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	Description string   `xml:"description"`
}

// RSS renders posts as an RSS 2.0 document, newest first.
func RSS(info Info, posts []*content.Post, opts Options) ([]byte, error) {
	if err := info.validate(); err != nil {
		return nil, err
	}
	posts = prepare(posts, opts)

	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:         info.Title,
			Link:          info.abs(""),
			Description:   info.Title,
			LastBuildDate: updatedAt(info, posts).Format(time.RFC1123Z),
		},
	}
	for _, p := range posts {
		link := info.abs(p.URL)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: "true", Value: link},
			PubDate:     p.Date.UTC().Format(time.RFC1123Z),
			Author:      p.Author,
			Categories:  p.Tags,
			Description: body(p, opts),
		})
	}
	return encode(doc)
}
