package commands

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/popsite/internal/scaffold"
)

// NewCmd groups the generators.
type NewCmd struct {
	Site NewSiteCmd `cmd:"" help:"Generate a new site at path"`
	Post NewPostCmd `cmd:"" help:"Write a new post stub"`
}

// NewSiteCmd implements 'new site'.
type NewSiteCmd struct {
	Path  string `arg:"" help:"Directory for the new site"`
	Force bool   `help:"Generate into a non-empty directory"`
	Git   bool   `help:"Initialize a git repository in the new site"`
}

func (n *NewSiteCmd) Run(g *Global, _ *CLI) error {
	if err := scaffold.NewSite(n.Path, scaffold.SiteOptions{Force: n.Force, Git: n.Git}, g.Logger); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "Site created: %s\nRun `popsite -C %s build` to build it.\n", n.Path, n.Path)
	return nil
}

// NewPostCmd implements 'new post'.
type NewPostCmd struct {
	Title  string   `arg:"" help:"Post title"`
	Author string   `help:"Post author (default: current user)"`
	Tags   []string `help:"Comma-separated tags"`
	Format string   `default:"md" enum:"md,html,gohtml,tmpl" help:"File extension of the post"`
	Layout string   `default:"post" help:"Layout named in the front matter"`
}

func (n *NewPostCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	p, err := scaffold.NewPost(cfg, scaffold.PostOptions{
		Title:  strings.TrimSpace(n.Title),
		Author: n.Author,
		Tags:   n.Tags,
		Format: n.Format,
		Layout: n.Layout,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "Post created: %s\n", relOrAbs(p))
	return nil
}
