package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/sitesmith/internal/slug"
)

// SlugCmd prints the slug each label would be assigned, in order, as one run
// would assign them.
type SlugCmd struct {
	Labels []string `arg:"" help:"Labels to slugify"`

	out io.Writer
}

func (s *SlugCmd) Run(_ *Global, _ *CLI) error {
	out := s.out
	if out == nil {
		out = os.Stdout
	}
	reg := slug.NewRegistry()
	for _, label := range s.Labels {
		fmt.Fprintf(out, "%s\t%s\n", slug.Assign(label, reg), label)
	}
	return nil
}
