// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"github.com/google/uuid"

	"phonestore/internal/models"
)

// Snapshot is a read-only view of every category at one point in time.
// Validators work against a snapshot so they never touch the store.
type Snapshot struct {
	byID     map[uuid.UUID]models.Category
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
}

// NewSnapshot indexes cats by id and by parent. The input order is kept for
// Children and Roots.
func NewSnapshot(cats []models.Category) *Snapshot {
	s := &Snapshot{
		byID:     make(map[uuid.UUID]models.Category, len(cats)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, c := range cats {
		c.Children = nil
		s.byID[c.ID] = c
		if c.ParentID == nil {
			s.roots = append(s.roots, c.ID)
		} else {
			s.children[*c.ParentID] = append(s.children[*c.ParentID], c.ID)
		}
	}
	return s
}

// Len returns the number of categories in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.byID)
}

// Get returns the category with the given id.
func (s *Snapshot) Get(id uuid.UUID) (models.Category, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// Roots returns every main category.
func (s *Snapshot) Roots() []models.Category {
	return s.collect(s.roots)
}

// Children returns the direct subcategories of id.
func (s *Snapshot) Children(id uuid.UUID) []models.Category {
	return s.collect(s.children[id])
}

// Siblings returns the categories sharing parentID (nil for roots).
func (s *Snapshot) Siblings(parentID *uuid.UUID) []models.Category {
	if parentID == nil {
		return s.Roots()
	}
	return s.Children(*parentID)
}

// FindByName returns the category named name under parentID, skipping
// exclude. The comparison is case-sensitive.
func (s *Snapshot) FindByName(parentID *uuid.UUID, name string, exclude uuid.UUID) (models.Category, bool) {
	for _, c := range s.Siblings(parentID) {
		if c.ID != exclude && c.Name == name {
			return c, true
		}
	}
	return models.Category{}, false
}

// IsAncestor reports whether ancestor appears on id's parent chain.
func (s *Snapshot) IsAncestor(ancestor, id uuid.UUID) bool {
	seen := make(map[uuid.UUID]bool)
	cur, ok := s.byID[id]
	for ok && cur.ParentID != nil {
		pid := *cur.ParentID
		if pid == ancestor {
			return true
		}
		if seen[pid] {
			return false
		}
		seen[pid] = true
		cur, ok = s.byID[pid]
	}
	return false
}

func (s *Snapshot) collect(ids []uuid.UUID) []models.Category {
	out := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.byID[id])
	}
	return out
}
