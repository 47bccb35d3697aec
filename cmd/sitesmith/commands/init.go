package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	"git.home.luguber.info/inful/sitesmith/internal/frontmatter"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/theme"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force      bool `help:"Overwrite existing files"`
	ConfigOnly bool `name:"config-only" help:"Write only the configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	logger := g.logger()
	logger.Info("Initializing configuration", logfields.Path(root.Config), slog.Bool("force", i.Force))
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	if i.ConfigOnly {
		return nil
	}
	return Scaffold(filepath.Dir(root.Config), i.Force, logger)
}

// Scaffold writes the starter theme and content the example configuration
// refers to, below dir.
func Scaffold(dir string, force bool, logger *slog.Logger) error {
	files := map[string][]byte{}
	for name, text := range starterTheme {
		files[filepath.Join("theme", name+".html")] = []byte(text)
	}
	files[filepath.Join("theme", theme.StaticDir, "style.css")] = []byte(starterCSS)
	files[filepath.Join("data", "games.yaml")] = []byte(starterGames)

	post, err := frontmatter.Compose(map[string]any{
		"title":  "Hello, arcade",
		"date":   "2024-05-01",
		"genres": []string{"news"},
		"tags":   []string{"welcome"},
	}, []byte("# Hello, arcade\n\nThe first post of the site.\n"))
	if err != nil {
		return fmt.Errorf("compose sample post: %w", err)
	}
	files[filepath.Join("content", "posts", "hello.md")] = post

	for rel, data := range files {
		target := filepath.Join(dir, rel)
		if _, err := os.Stat(target); err == nil && !force {
			logger.Info("Keeping existing file", logfields.Path(target))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		logger.Debug("Wrote starter file", logfields.Path(target))
	}
	return nil
}

var starterTheme = map[string]string{
	theme.Base: `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{page.title}} | {{site.title}}</title>
<link rel="stylesheet" href="/style.css">
</head>
<body>
<header><a href="{{site.url}}">{{site.title}}</a></header>
<main>{{content}}</main>
</body>
</html>
`,
	theme.Single: `<article>
<h1>{{title}}</h1>
{{#if year}}<p>Released {{year}}</p>{{/if}}
{{#each terms.genres}}<a href="{{url}}">{{name}}</a> {{/each}}
{{#if content}}{{content}}{{/if}}
{{#unless content}}<p>{{description}}</p>{{/unless}}
</article>
`,
	theme.List: `<ul>
{{#each items}}<li><a href="{{url}}">{{title}}</a></li>
{{/each}}</ul>
{{pager}}
`,
	theme.Pagination: `<nav>
{{#if hasPrevious}}<a href="{{previousUrl}}">newer</a>{{/if}}
Page {{currentPage}} of {{totalPages}}
{{#if hasNext}}<a href="{{nextUrl}}">older</a>{{/if}}
</nav>
`,
	theme.Taxonomy: `<h1>{{taxonomy.name}}: {{term.name}}</h1>
<ul>
{{#each items}}<li><a href="{{url}}">{{title}}</a></li>
{{/each}}</ul>
{{pager}}
`,
	theme.Terms: `<h1>{{taxonomy.name}}</h1>
<ul>
{{#each terms}}<li><a href="{{url}}">{{name}}</a> ({{count}})</li>
{{/each}}</ul>
`,
}

const starterCSS = `body { font-family: sans-serif; max-width: 40rem; margin: 0 auto; }
`

const starterGames = `items:
  - title: Galaga
    year: 1981
    description: Shoot the swarm.
    genres: [action, retro]
  - title: Tetris
    year: 1984
    description: Falling blocks.
    genres: [puzzle, retro]
`
