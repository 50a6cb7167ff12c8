// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"phonestore/internal/models"
)

// MaxNameLen is the longest category name accepted, in runes.
const MaxNameLen = 100

// ComputeLevel returns the level a category with the given parent has.
func ComputeLevel(parentID *uuid.UUID) int {
	if parentID == nil {
		return models.LevelRoot
	}
	return models.LevelSub
}

// ValidateName rejects blank and oversized names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return fmt.Errorf("%w: name is longer than %d characters", ErrInvalidName, MaxNameLen)
	}
	return nil
}

// ValidateCreate checks that a category named name can be created under
// parentID. The parent, when given, must exist and be a main category.
func ValidateCreate(name string, parentID *uuid.UUID, snap *Snapshot) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if parentID != nil {
		parent, ok := snap.Get(*parentID)
		if !ok {
			return fmt.Errorf("%w: parent %s does not exist", ErrInvalidParent, *parentID)
		}
		if !parent.IsRoot() {
			return fmt.Errorf("%w: %q is already a subcategory", ErrInvalidParent, parent.Name)
		}
	}
	if dup, ok := snap.FindByName(parentID, name, uuid.Nil); ok {
		return fmt.Errorf("%w: %q (%s)", ErrDuplicateName, name, dup.ID)
	}
	return nil
}

// ValidateRename checks that category id may be renamed to newName.
func ValidateRename(id uuid.UUID, newName string, snap *Snapshot) error {
	c, ok := snap.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := ValidateName(newName); err != nil {
		return err
	}
	if dup, ok := snap.FindByName(c.ParentID, newName, id); ok {
		return fmt.Errorf("%w: %q (%s)", ErrDuplicateName, newName, dup.ID)
	}
	return nil
}

// ValidateDelete fails with *HasDependentsError when anything still
// references the category.
func ValidateDelete(id uuid.UUID, productCount, childCount int) error {
	if productCount > 0 || childCount > 0 {
		return &HasDependentsError{CategoryID: id, Products: productCount, Children: childCount}
	}
	return nil
}

// ValidateMove checks that category id can be placed under newParentID
// (nil promotes it to a main category).
func ValidateMove(id uuid.UUID, newParentID *uuid.UUID, snap *Snapshot) error {
	c, ok := snap.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if newParentID != nil {
		if *newParentID == id || snap.IsAncestor(id, *newParentID) {
			return ErrCycle
		}
		parent, ok := snap.Get(*newParentID)
		if !ok {
			return fmt.Errorf("%w: parent %s does not exist", ErrInvalidParent, *newParentID)
		}
		if !parent.IsRoot() {
			return fmt.Errorf("%w: %q is already a subcategory", ErrInvalidParent, parent.Name)
		}
		if n := len(snap.Children(id)); n > 0 {
			return fmt.Errorf("%w: %q has %d subcategories and cannot become one", ErrInvalidParent, c.Name, n)
		}
	}
	if dup, ok := snap.FindByName(newParentID, c.Name, id); ok {
		return fmt.Errorf("%w: %q (%s)", ErrDuplicateName, c.Name, dup.ID)
	}
	return nil
}

// ValidateMerge checks that every dependent of sourceID can be moved to
// targetID without breaking the tree.
func ValidateMerge(sourceID, targetID uuid.UUID, snap *Snapshot) error {
	if sourceID == targetID {
		return ErrSelfMerge
	}
	if _, ok := snap.Get(sourceID); !ok {
		return fmt.Errorf("%w: source %s", ErrNotFound, sourceID)
	}
	target, ok := snap.Get(targetID)
	if !ok {
		return fmt.Errorf("%w: target %s", ErrNotFound, targetID)
	}
	if snap.IsAncestor(sourceID, targetID) {
		return ErrCycle
	}

	children := snap.Children(sourceID)
	if len(children) == 0 {
		return nil
	}
	if !target.IsRoot() {
		return fmt.Errorf("%w: %q is a subcategory and cannot adopt %d subcategories",
			ErrInvalidParent, target.Name, len(children))
	}
	for _, child := range children {
		if dup, ok := snap.FindByName(&targetID, child.Name, uuid.Nil); ok {
			return fmt.Errorf("%w: %q already exists under %q (%s)", ErrDuplicateName, child.Name, target.Name, dup.ID)
		}
	}
	return nil
}
