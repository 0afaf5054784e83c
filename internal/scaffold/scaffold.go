// Package scaffold generates new sites and new posts.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/popsite/internal/config"
	"git.home.luguber.info/inful/popsite/internal/frontmatter"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/permalink"
)

//go:embed all:site
var siteFiles embed.FS

// ErrExists is returned instead of overwriting an existing site or post.
var ErrExists = errors.New("already exists")

// ConfigFile is the configuration written into new sites.
const ConfigFile = "_config.yaml"

// SamplePostTitle is the title of the post every new site starts with.
const SamplePostTitle = "Example Post About Something"

const gitignore = "_site/\n.popsite/\n"

// SiteOptions tunes NewSite.
type SiteOptions struct {
	// Force allows generating into a non-empty directory.
	Force bool
	// Git initializes a repository in the new site.
	Git bool
	// Now dates the sample post. Defaults to time.Now.
	Now func() time.Time
}

// NewSite creates a ready-to-build site in dir.
func NewSite(dir string, opts SiteOptions, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 && !opts.Force {
		return fmt.Errorf("site %s: %w", dir, ErrExists)
	}

	err := fs.WalkDir(siteFiles, "site", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dst := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(p, "site")))
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		data, err := siteFiles.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
	if err != nil {
		return fmt.Errorf("write site files: %w", err)
	}

	if err := config.Init(filepath.Join(dir, ConfigFile), opts.Force); err != nil {
		return err
	}
	cfg := config.Default(dir)
	if _, err := NewPost(cfg, PostOptions{
		Title:  SamplePostTitle,
		Author: "popsite",
		Tags:   []string{"tag1", "tag2"},
		Date:   opts.Now(),
		Body:   "popsite is a static site generator. It can be used to make blogs. I hope you enjoy it!\n",
	}); err != nil {
		return err
	}

	if opts.Git {
		if _, err := git.PlainInit(dir, false); err != nil && !errors.Is(err, git.ErrRepositoryAlreadyExists) {
			return fmt.Errorf("initialize git repository: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
			return err
		}
	}
	logger.Info("site created", logfields.Path(dir))
	return nil
}

// PostOptions describes a new post.
type PostOptions struct {
	Title  string
	Author string
	Tags   []string
	// Format is the file extension, "md" by default.
	Format string
	Layout string
	Date   time.Time
	Body   string
}

// NewPost writes a stub post named from the permalink pattern and returns
// its path. Author defaults to DefaultAuthor.
func NewPost(cfg *config.Config, opts PostOptions) (string, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return "", errors.New("post title is required")
	}
	if opts.Format == "" {
		opts.Format = "md"
	}
	if opts.Layout == "" {
		opts.Layout = "post"
	}
	if opts.Date.IsZero() {
		opts.Date = time.Now()
	}
	if opts.Author == "" {
		opts.Author = DefaultAuthor()
	}
	if opts.Tags == nil {
		opts.Tags = []string{"tag_1", "tag_2"}
	}

	name := permalink.PostFileName(cfg.Permalink, opts.Date, opts.Title, opts.Format)
	dst := filepath.Join(cfg.PostsDir(), filepath.FromSlash(path.Clean(name)))
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("post %s: %w", dst, ErrExists)
	}

	front, err := frontmatter.Marshal(frontmatter.Meta{
		Layout: opts.Layout,
		Title:  opts.Title,
		Author: opts.Author,
		Tags:   opts.Tags,
	}, frontmatter.Style{Newline: "\n"})
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, append(front, opts.Body...), 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

// DefaultAuthor is the login name of the current user.
func DefaultAuthor() string {
	for _, key := range []string{"LOGNAME", "USER"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
