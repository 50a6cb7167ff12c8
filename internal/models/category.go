// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category levels. The catalog only has main categories and their direct
// subcategories.
const (
	LevelRoot = 0
	LevelSub  = 1
)

// Category is a node in the two-tier catalog hierarchy.
// A nil ParentID marks a main (root) category.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Level       int        `json:"level"`
	IsActive    bool       `json:"is_active"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Children     []Category `json:"children,omitempty"`
	ProductCount int        `json:"product_count"`
}

// IsRoot reports whether the category is a main category.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// HasParent reports whether the category's parent is id.
func (c *Category) HasParent(id uuid.UUID) bool {
	return c.ParentID != nil && *c.ParentID == id
}

// CategoryPatch lists the columns an update may touch. Nil fields are left
// unchanged. ClearParent promotes the category to a root even though
// ParentID is nil.
type CategoryPatch struct {
	Name        *string
	Slug        *string
	Description *string
	ParentID    *uuid.UUID
	ClearParent bool
	Level       *int
	IsActive    *bool
	SortOrder   *int
}

// Apply copies the patch onto c. Stores use it to keep in-memory copies in
// step with what was written.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.ClearParent {
		c.ParentID = nil
	} else if p.ParentID != nil {
		id := *p.ParentID
		c.ParentID = &id
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if p.SortOrder != nil {
		c.SortOrder = *p.SortOrder
	}
}

// Empty reports whether the patch changes nothing.
func (p CategoryPatch) Empty() bool {
	return p.Name == nil && p.Slug == nil && p.Description == nil &&
		p.ParentID == nil && !p.ClearParent && p.Level == nil &&
		p.IsActive == nil && p.SortOrder == nil
}
