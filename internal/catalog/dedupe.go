// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"phonestore/internal/models"
	"phonestore/internal/slug"
)

// DuplicateGroup is a set of sibling categories that name the same thing,
// such as "Laptop" and "Laptops". Target is the one the others should be
// merged into.
type DuplicateGroup struct {
	Target  models.Category
	Sources []models.Category
}

// FindDuplicates groups siblings whose names reduce to the same key once
// case, accents and punctuation are folded and a plural "s" is dropped.
// The target of each group is the category holding the most products, then
// the oldest one. Categories must carry ProductCount.
func FindDuplicates(cats []models.Category) []DuplicateGroup {
	type bucket struct {
		parent string
		key    string
	}
	groups := make(map[bucket][]models.Category)
	var order []bucket
	for _, c := range cats {
		b := bucket{key: duplicateKey(c.Name)}
		if c.ParentID != nil {
			b.parent = c.ParentID.String()
		}
		if b.key == "" {
			continue
		}
		if _, ok := groups[b]; !ok {
			order = append(order, b)
		}
		groups[b] = append(groups[b], c)
	}

	var out []DuplicateGroup
	for _, b := range order {
		members := groups[b]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			if members[i].ProductCount != members[j].ProductCount {
				return members[i].ProductCount > members[j].ProductCount
			}
			if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
				return members[i].CreatedAt.Before(members[j].CreatedAt)
			}
			return members[i].Name < members[j].Name
		})
		out = append(out, DuplicateGroup{Target: members[0], Sources: members[1:]})
	}
	return out
}

func duplicateKey(name string) string {
	key := strings.ReplaceAll(slug.Generate(name), "-", "")
	if len(key) > 3 && strings.HasSuffix(key, "s") && !strings.HasSuffix(key, "ss") {
		key = strings.TrimSuffix(key, "s")
	}
	return key
}

// Duplicates returns the duplicate groups of the current catalog.
func (s *Service) Duplicates(ctx context.Context) ([]DuplicateGroup, error) {
	cats, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}
	return FindDuplicates(cats), nil
}

// MergeDuplicates folds every source of g into its target in one
// transaction. Subcategories of a source that duplicate a subcategory of the
// target are merged into it first, so the final reparent cannot collide.
func (s *Service) MergeDuplicates(ctx context.Context, g DuplicateGroup) ([]MergeResult, error) {
	var results []MergeResult
	err := s.store.InTx(ctx, func(tx Store) error {
		svc := NewService(tx)
		for _, src := range g.Sources {
			if src.IsRoot() {
				folded, err := svc.foldChildren(ctx, src.ID, g.Target.ID)
				if err != nil {
					return err
				}
				results = append(results, folded...)
			}
			res, err := svc.MergeCategories(ctx, src.ID, g.Target.ID)
			if err != nil {
				return err
			}
			results = append(results, *res)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("merge duplicates of %q: %w", g.Target.Name, err)
	}
	return results, nil
}

// foldChildren merges each child of from into the child of to with the same
// duplicate key.
func (s *Service) foldChildren(ctx context.Context, from, to uuid.UUID) ([]MergeResult, error) {
	src, err := s.store.Categories().ListChildren(ctx, from, true)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	dst, err := s.store.Categories().ListChildren(ctx, to, true)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	byKey := make(map[string]uuid.UUID, len(dst))
	for _, c := range dst {
		byKey[duplicateKey(c.Name)] = c.ID
	}

	var results []MergeResult
	for _, c := range src {
		target, ok := byKey[duplicateKey(c.Name)]
		if !ok {
			continue
		}
		res, err := s.MergeCategories(ctx, c.ID, target)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, nil
}
