// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for catalog operations. Callers match them with errors.Is;
// every layer wraps them with context.
var (
	// ErrNotFound is returned when a referenced category id does not exist.
	ErrNotFound = errors.New("category not found")

	// ErrDuplicateName is returned when a sibling with the same name exists
	// under the same parent.
	ErrDuplicateName = errors.New("category name already used by a sibling")

	// ErrInvalidParent is returned when an operation would nest categories
	// more than two levels deep or the parent does not exist.
	ErrInvalidParent = errors.New("invalid parent category")

	// ErrInvalidName is returned for empty or oversized category names.
	ErrInvalidName = errors.New("invalid category name")

	// ErrCycle is returned when a move or merge would make a category its
	// own ancestor.
	ErrCycle = errors.New("category cannot be its own ancestor")

	// ErrSelfMerge is returned when source and target of a merge are equal.
	ErrSelfMerge = errors.New("cannot merge a category into itself")

	// ErrHasDependents matches any *HasDependentsError.
	ErrHasDependents = errors.New("category has dependents")

	// ErrCategoryNotFound is returned by the categorizer when the target
	// category is missing or inactive.
	ErrCategoryNotFound = errors.New("category not found or inactive")

	// ErrProductNotFound is returned when a referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrNoMatch is returned by brand inference when no keyword matches.
	// It is a legitimate "unknown" result, not a system failure.
	ErrNoMatch = errors.New("no brand matched the model name")
)

// HasDependentsError blocks a delete and carries the counts that caused it.
type HasDependentsError struct {
	CategoryID uuid.UUID
	Products   int
	Children   int
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("category %s has dependents: %d products, %d subcategories",
		e.CategoryID, e.Products, e.Children)
}

// Is lets errors.Is(err, ErrHasDependents) match.
func (e *HasDependentsError) Is(target error) bool {
	return target == ErrHasDependents
}
