// Package index regenerates the metadata document from the recipe files.
//
// It scans recipes/*.json under a site root and writes asset/Info.json
// (summaries plus the sorted tag set) and the legacy asset/recipes.json
// path list that older pages still read.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Layout of a site root.
const (
	RecipesDir   = "recipes"
	InfoPath     = "asset/Info.json"
	ListPath     = "asset/recipes.json"
	UnknownName  = "Unknown Recipe"
	readParallel = 8
)

// Summary is one entry of the metadata document.
type Summary struct {
	Filename    string          `json:"filename"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Tags        json.RawMessage `json:"tags"`
}

// Info is the metadata document as written to disk.
type Info struct {
	Recipes      []Summary `json:"recipes"`
	AllTags      []string  `json:"allTags"`
	TotalRecipes int       `json:"totalRecipes"`
	LastUpdated  *string   `json:"lastUpdated"`
}

// Result holds both generated documents.
type Result struct {
	Info  Info
	Paths []string // recipes/<file> for every scanned file
}

// Generator builds the index from a site root.
type Generator struct {
	fsys fs.FS
	log  *logger.Logger
}

// NewGenerator creates a generator reading from fsys, which is rooted at
// the site directory.
func NewGenerator(fsys fs.FS, log *logger.Logger) *Generator {
	return &Generator{fsys: fsys, log: log}
}

// recipeDoc is the subset of a detail document the index needs.
type recipeDoc struct {
	Name        *string         `json:"name"`
	Description string          `json:"description"`
	Tags        json.RawMessage `json:"tags"`
}

// Generate scans the recipes directory. Files that cannot be read or
// decoded are logged and skipped; a missing directory is an error.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	entries, err := fs.ReadDir(g.fsys, RecipesDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", RecipesDir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)

	summaries := make([]*Summary, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(readParallel)
	for i, name := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			s, err := g.summarize(name)
			if err != nil {
				g.log.Warn("index: could not process %s: %v", name, err)
				return nil
			}
			summaries[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Info: Info{
			Recipes: []Summary{},
			AllTags: []string{},
		},
		Paths: make([]string, 0, len(files)),
	}
	tagSet := make(map[string]struct{})
	for i, name := range files {
		res.Paths = append(res.Paths, path.Join(RecipesDir, name))
		s := summaries[i]
		if s == nil {
			continue
		}
		res.Info.Recipes = append(res.Info.Recipes, *s)
		for _, t := range tagList(s.Tags) {
			tagSet[t] = struct{}{}
		}
	}
	for t := range tagSet {
		res.Info.AllTags = append(res.Info.AllTags, t)
	}
	sort.Strings(res.Info.AllTags)
	res.Info.TotalRecipes = len(res.Info.Recipes)

	g.log.Info("index: %d files, %d recipes, %d tags", len(files), res.Info.TotalRecipes, len(res.Info.AllTags))
	return res, nil
}

func (g *Generator) summarize(name string) (*Summary, error) {
	raw, err := fs.ReadFile(g.fsys, path.Join(RecipesDir, name))
	if err != nil {
		return nil, err
	}
	var doc recipeDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	s := &Summary{
		Filename:    strings.TrimSuffix(name, ".json"),
		Name:        UnknownName,
		Description: doc.Description,
		Tags:        doc.Tags,
	}
	if doc.Name != nil {
		s.Name = *doc.Name
	}
	if len(s.Tags) == 0 {
		s.Tags = json.RawMessage("[]")
	}
	return s, nil
}

// tagList returns raw as a string list, or nil when it is anything else.
func tagList(raw json.RawMessage) []string {
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}

// Write stores both documents under root, creating the asset directory.
func Write(root string, res *Result) error {
	if res == nil {
		return errors.New("index: nothing to write")
	}
	if err := os.MkdirAll(filepath.Join(root, path.Dir(InfoPath)), 0o755); err != nil {
		return fmt.Errorf("creating asset dir: %w", err)
	}
	if err := writeJSON(filepath.Join(root, ListPath), res.Paths); err != nil {
		return err
	}
	return writeJSON(filepath.Join(root, InfoPath), res.Info)
}

// Encode renders v the way Write stores it: 4-space indent, non-ASCII
// text kept as is.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeJSON(file string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", file, err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	return nil
}
