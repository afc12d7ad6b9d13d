// Package transfer moves the project and comment collections in and out of
// the store as one JSON document.
package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

// Document is the export file. Collections are stored unredacted.
type Document struct {
	Projects   []domain.Project `json:"projects"`
	Comments   []domain.Comment `json:"comments"`
	ExportDate time.Time        `json:"exportDate"`
}

// incoming mirrors Document with presence tracking: a collection missing
// from the file (or null) is left untouched by an import.
type incoming struct {
	Projects *[]domain.Project `json:"projects"`
	Comments *[]domain.Comment `json:"comments"`
}

// Result reports what an import replaced.
type Result struct {
	ProjectsReplaced bool `json:"projects_replaced"`
	CommentsReplaced bool `json:"comments_replaced"`
	Projects         int  `json:"projects"`
	Comments         int  `json:"comments"`
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(s store.Store) *Service {
	return &Service{store: s, now: domain.Now}
}

// FileName is the download name for an export taken at t.
func FileName(t time.Time) string {
	return "biamino-export-" + t.UTC().Format("2006-01-02") + ".json"
}

func (s *Service) Export(ctx context.Context) (Document, error) {
	ps, err := s.store.ListProjects(ctx, store.ProjectFilter{})
	if err != nil {
		return Document{}, fmt.Errorf("export projects: %w", err)
	}
	cs, err := s.store.ListComments(ctx, store.CommentFilter{})
	if err != nil {
		return Document{}, fmt.Errorf("export comments: %w", err)
	}
	for i := range cs {
		cs[i].User = nil
	}
	return Document{Projects: ps, Comments: cs, ExportDate: s.now()}, nil
}

// WriteExport encodes a fresh export to w.
func (s *Service) WriteExport(ctx context.Context, w io.Writer) (Document, error) {
	doc, err := s.Export(ctx)
	if err != nil {
		return Document{}, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return Document{}, fmt.Errorf("encode export: %w", err)
	}
	return doc, nil
}

// Import replaces every collection present in the document. A document
// that does not decode, or whose records lack identities, fails with
// domain.ErrInvalidDocument before anything is written.
func (s *Service) Import(ctx context.Context, r io.Reader) (Result, error) {
	var in incoming
	dec := json.NewDecoder(r)
	if err := dec.Decode(&in); err != nil {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	if err := check(in); err != nil {
		return Result{}, err
	}

	res := Result{ProjectsReplaced: in.Projects != nil, CommentsReplaced: in.Comments != nil}
	if in.Projects != nil {
		res.Projects = len(*in.Projects)
	}
	if in.Comments != nil {
		res.Comments = len(*in.Comments)
	}
	if err := s.store.ReplaceCollections(ctx, in.Projects, in.Comments); err != nil {
		return Result{}, fmt.Errorf("import: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Bool("projects_replaced", res.ProjectsReplaced).
		Bool("comments_replaced", res.CommentsReplaced).
		Int("projects", res.Projects).
		Int("comments", res.Comments).
		Msg("import applied")
	return res, nil
}

// check is a presence check on the fields a record cannot be stored
// without. Identities must also be unique within their collection.
func check(in incoming) error {
	if in.Projects != nil {
		projects, fields, links := idSet{}, idSet{}, idSet{}
		for i, p := range *in.Projects {
			if p.ID == "" {
				return fmt.Errorf("%w: projects[%d] has no id", domain.ErrInvalidDocument, i)
			}
			if err := projects.add(p.ID, "projects[%d]", i); err != nil {
				return err
			}
			if !p.Department.Valid() {
				return fmt.Errorf("%w: projects[%d] has department %q", domain.ErrInvalidDocument, i, p.Department)
			}
			for j, f := range p.CustomFields {
				if f.ID == "" {
					return fmt.Errorf("%w: projects[%d].custom_fields[%d] has no id", domain.ErrInvalidDocument, i, j)
				}
				if err := fields.add(f.ID, "projects[%d].custom_fields[%d]", i, j); err != nil {
					return err
				}
			}
			for j, l := range p.Links {
				if l.ID == "" {
					return fmt.Errorf("%w: projects[%d].links[%d] has no id", domain.ErrInvalidDocument, i, j)
				}
				if err := links.add(l.ID, "projects[%d].links[%d]", i, j); err != nil {
					return err
				}
			}
		}
	}
	if in.Comments != nil {
		comments := idSet{}
		for i, c := range *in.Comments {
			if c.ID == "" || c.ProjectID == "" || c.UserID == "" {
				return fmt.Errorf("%w: comments[%d] is missing an id", domain.ErrInvalidDocument, i)
			}
			if err := comments.add(c.ID, "comments[%d]", i); err != nil {
				return err
			}
		}
	}
	return nil
}

type idSet map[string]struct{}

func (s idSet) add(id, format string, args ...any) error {
	if _, dup := s[id]; dup {
		return fmt.Errorf("%w: %s repeats id %q", domain.ErrInvalidDocument, fmt.Sprintf(format, args...), id)
	}
	s[id] = struct{}{}
	return nil
}
