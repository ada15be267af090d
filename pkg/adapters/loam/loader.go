// Package loam stores library steps as a folder of Markdown documents managed
// by Loam. Each document carries the template's id and title as front matter;
// the body holds the code in a fenced block.
package loam

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

const (
	fenceOpen  = "```js\n"
	fenceClose = "\n```"
)

// Pack adapts a Loam repository to ports.LibraryPack.
type Pack struct {
	Repo  core.Repository
	Typed *loam.TypedRepository[LibraryMetadata]
}

// Open initializes (or reuses) a Loam repository rooted at dir.
func Open(dir string) (*Pack, error) {
	repo, err := loam.Init(dir, loam.WithVersioning(false), loam.WithForceTemp(false))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam at %s: %w", dir, err)
	}
	return New(repo), nil
}

// New creates a Pack over an initialized repository.
func New(repo core.Repository) *Pack {
	return &Pack{
		Repo:  repo,
		Typed: loam.NewTypedRepository[LibraryMetadata](repo),
	}
}

var _ ports.LibraryPack = (*Pack)(nil)

// Export writes one document per template, overwriting documents with the same name.
func (p *Pack) Export(ctx context.Context, items []domain.LibraryStep) error {
	for _, item := range items {
		doc := &loam.DocumentModel[LibraryMetadata]{
			ID:      documentID(item),
			Content: fenceOpen + item.Code + fenceClose + "\n",
			Data:    LibraryMetadata{ID: item.ID, Title: item.Title, Language: "javascript"},
		}
		if err := p.Typed.Save(ctx, doc); err != nil {
			return fmt.Errorf("loam save failed for %s: %w", doc.ID, err)
		}
	}
	return nil
}

// Import reads every document of the pack, ordered by title.
// List only carries front matter, so each body is loaded with Get.
func (p *Pack) Import(ctx context.Context) ([]domain.LibraryStep, error) {
	docs, err := p.Typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	items := make([]domain.LibraryStep, 0, len(docs))
	for _, listed := range docs {
		doc, err := p.Typed.Get(ctx, listed.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", listed.ID, err)
		}
		name := path.Base(strings.TrimSuffix(doc.ID, path.Ext(doc.ID)))
		id := doc.Data.ID
		if id == "" {
			id = name
		}
		title := doc.Data.Title
		if title == "" {
			title = name
		}
		items = append(items, domain.LibraryStep{
			ID:    id,
			Title: title,
			Code:  extractCode(doc.Content),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Title < items[j].Title
	})
	return items, nil
}

// extractCode returns the body of the first fenced block, or the whole
// content when it has none.
func extractCode(content string) string {
	start := strings.Index(content, fenceOpen)
	if start < 0 {
		return strings.TrimSpace(content)
	}
	body := content[start+len(fenceOpen):]
	end := strings.LastIndex(body, fenceClose)
	if end < 0 {
		return body
	}
	return body[:end]
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func documentID(item domain.LibraryStep) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(item.Title), "-"), "-")
	if slug == "" {
		slug = "step"
	}
	suffix := item.ID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return slug + "-" + suffix + ".md"
}
