// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalogtest provides an in-memory catalog.Store for tests.
// It mirrors the PostgreSQL schema's constraints: sibling names are unique,
// deleting a referenced category fails, and InTx is all-or-nothing.
package catalogtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"phonestore/internal/catalog"
	"phonestore/internal/models"
)

// ErrForeignKey is returned when a write would leave a dangling reference.
var ErrForeignKey = errors.New("foreign key violation")

// Store is an in-memory catalog.Store. The zero value is not usable; call New.
type Store struct {
	mu   *sync.Mutex
	data *state
	inTx bool

	// Fail, when set, is called before every write with the operation name
	// (for example "products.reassign_all"). A non-nil result aborts the
	// write with that error.
	Fail func(op string) error
}

type state struct {
	categories map[uuid.UUID]models.Category
	products   map[uuid.UUID]models.Product
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		data: &state{
			categories: make(map[uuid.UUID]models.Category),
			products:   make(map[uuid.UUID]models.Product),
		},
	}
}

func (st *state) clone() *state {
	cp := &state{
		categories: make(map[uuid.UUID]models.Category, len(st.categories)),
		products:   make(map[uuid.UUID]models.Product, len(st.products)),
	}
	for k, v := range st.categories {
		cp.categories[k] = v
	}
	for k, v := range st.products {
		cp.products[k] = v
	}
	return cp
}

// Categories implements catalog.Store.
func (s *Store) Categories() catalog.CategoryRepository { return &categoryRepo{s: s} }

// Products implements catalog.Store.
func (s *Store) Products() catalog.ProductRepository { return &productRepo{s: s} }

// InTx implements catalog.Store. The transaction works on a copy of the data
// that replaces the original only when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(tx catalog.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, data: s.data.clone(), inTx: true, Fail: s.Fail}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) fail(op string) error {
	if s.Fail == nil {
		return nil
	}
	if err := s.Fail(op); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (st *state) productCount(categoryID uuid.UUID) int {
	n := 0
	for _, p := range st.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			n++
		}
	}
	return n
}

func (st *state) sorted(keep func(models.Category) bool) []models.Category {
	var out []models.Category
	for _, c := range st.categories {
		if keep(c) {
			c.ProductCount = st.productCount(c.ID)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (st *state) nameTaken(parentID *uuid.UUID, name string, exclude uuid.UUID) bool {
	for _, c := range st.categories {
		if c.ID == exclude || c.Name != name {
			continue
		}
		if (c.ParentID == nil && parentID == nil) ||
			(c.ParentID != nil && parentID != nil && *c.ParentID == *parentID) {
			return true
		}
	}
	return false
}

type categoryRepo struct {
	s *Store
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	defer r.s.lock()()
	c, ok := r.s.data.categories[id]
	if !ok {
		return nil, fmt.Errorf("find category %s: %w", id, catalog.ErrNotFound)
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]models.Category, error) {
	defer r.s.lock()()
	return r.s.data.sorted(func(models.Category) bool { return true }), nil
}

func (r *categoryRepo) ListRoots(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	defer r.s.lock()()
	return r.s.data.sorted(func(c models.Category) bool {
		return c.ParentID == nil && (includeInactive || c.IsActive)
	}), nil
}

func (r *categoryRepo) ListChildren(ctx context.Context, parentID uuid.UUID, includeInactive bool) ([]models.Category, error) {
	defer r.s.lock()()
	return r.s.data.sorted(func(c models.Category) bool {
		return c.HasParent(parentID) && (includeInactive || c.IsActive)
	}), nil
}

func (r *categoryRepo) Insert(ctx context.Context, c *models.Category) (*models.Category, error) {
	defer r.s.lock()()
	if err := r.s.fail("categories.insert"); err != nil {
		return nil, err
	}
	st := r.s.data
	if c.ParentID != nil {
		if _, ok := st.categories[*c.ParentID]; !ok {
			return nil, fmt.Errorf("insert category: parent %s: %w", *c.ParentID, ErrForeignKey)
		}
	}
	if st.nameTaken(c.ParentID, c.Name, uuid.Nil) {
		return nil, fmt.Errorf("insert category %q: %w", c.Name, catalog.ErrDuplicateName)
	}

	now := time.Now()
	row := *c
	row.ID = uuid.New()
	row.Children = nil
	row.ProductCount = 0
	row.CreatedAt = now
	row.UpdatedAt = now
	if c.ParentID != nil {
		pid := *c.ParentID
		row.ParentID = &pid
	}
	st.categories[row.ID] = row
	return &row, nil
}

func (r *categoryRepo) Update(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	defer r.s.lock()()
	if err := r.s.fail("categories.update"); err != nil {
		return nil, err
	}
	st := r.s.data
	row, ok := st.categories[id]
	if !ok {
		return nil, fmt.Errorf("update category %s: %w", id, catalog.ErrNotFound)
	}
	patch.Apply(&row)
	if row.ParentID != nil {
		if _, ok := st.categories[*row.ParentID]; !ok {
			return nil, fmt.Errorf("update category: parent %s: %w", *row.ParentID, ErrForeignKey)
		}
	}
	if st.nameTaken(row.ParentID, row.Name, id) {
		return nil, fmt.Errorf("update category %q: %w", row.Name, catalog.ErrDuplicateName)
	}
	row.UpdatedAt = time.Now()
	st.categories[id] = row
	row.ProductCount = st.productCount(id)
	return &row, nil
}

func (r *categoryRepo) Remove(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if err := r.s.fail("categories.remove"); err != nil {
		return err
	}
	st := r.s.data
	if _, ok := st.categories[id]; !ok {
		return fmt.Errorf("remove category %s: %w", id, catalog.ErrNotFound)
	}
	if st.productCount(id) > 0 {
		return fmt.Errorf("remove category %s: products reference it: %w", id, ErrForeignKey)
	}
	for _, c := range st.categories {
		if c.HasParent(id) {
			return fmt.Errorf("remove category %s: subcategories reference it: %w", id, ErrForeignKey)
		}
	}
	delete(st.categories, id)
	return nil
}

func (r *categoryRepo) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	defer r.s.lock()()
	n := 0
	for _, c := range r.s.data.categories {
		if c.HasParent(id) {
			n++
		}
	}
	return n, nil
}

func (r *categoryRepo) ReparentChildren(ctx context.Context, from, to uuid.UUID) (int64, error) {
	defer r.s.lock()()
	if err := r.s.fail("categories.reparent"); err != nil {
		return 0, err
	}
	st := r.s.data
	var n int64
	for id, c := range st.categories {
		if !c.HasParent(from) {
			continue
		}
		if st.nameTaken(&to, c.Name, id) {
			return n, fmt.Errorf("reparent %q: %w", c.Name, catalog.ErrDuplicateName)
		}
		target := to
		c.ParentID = &target
		c.UpdatedAt = time.Now()
		st.categories[id] = c
		n++
	}
	return n, nil
}

func (r *categoryRepo) NextSortOrder(ctx context.Context, parentID *uuid.UUID) (int, error) {
	defer r.s.lock()()
	next := 0
	for _, c := range r.s.data.categories {
		if ptrEqual(c.ParentID, parentID) && c.SortOrder >= next {
			next = c.SortOrder + 1
		}
	}
	return next, nil
}

type productRepo struct {
	s *Store
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	defer r.s.lock()()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, fmt.Errorf("find product %s: %w", id, catalog.ErrProductNotFound)
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter catalog.ProductFilter) ([]models.Product, error) {
	defer r.s.lock()()
	var out []models.Product
	for _, p := range r.s.data.products {
		switch {
		case filter.CategoryID != nil && !ptrEqual(p.CategoryID, filter.CategoryID):
			continue
		case filter.Uncategorized && p.CategoryID != nil:
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	defer r.s.lock()()
	if err := r.s.fail("products.create"); err != nil {
		return nil, err
	}
	st := r.s.data
	if p.CategoryID != nil {
		if _, ok := st.categories[*p.CategoryID]; !ok {
			return nil, fmt.Errorf("create product: category %s: %w", *p.CategoryID, ErrForeignKey)
		}
	}
	now := time.Now()
	row := *p
	row.ID = uuid.New()
	row.CreatedAt = now
	row.UpdatedAt = now
	st.products[row.ID] = row
	return &row, nil
}

func (r *productRepo) CountByCategoryID(ctx context.Context, categoryID uuid.UUID) (int, error) {
	defer r.s.lock()()
	return r.s.data.productCount(categoryID), nil
}

func (r *productRepo) ReassignCategory(ctx context.Context, productID uuid.UUID, categoryID *uuid.UUID) error {
	defer r.s.lock()()
	if err := r.s.fail("products.reassign"); err != nil {
		return err
	}
	st := r.s.data
	p, ok := st.products[productID]
	if !ok {
		return fmt.Errorf("reassign product %s: %w", productID, catalog.ErrProductNotFound)
	}
	if categoryID != nil {
		if _, ok := st.categories[*categoryID]; !ok {
			return fmt.Errorf("reassign product: category %s: %w", *categoryID, ErrForeignKey)
		}
		id := *categoryID
		p.CategoryID = &id
	} else {
		p.CategoryID = nil
	}
	p.UpdatedAt = time.Now()
	st.products[productID] = p
	return nil
}

func (r *productRepo) ReassignAll(ctx context.Context, from, to uuid.UUID) (int64, error) {
	defer r.s.lock()()
	if err := r.s.fail("products.reassign_all"); err != nil {
		return 0, err
	}
	st := r.s.data
	if _, ok := st.categories[to]; !ok {
		return 0, fmt.Errorf("reassign products: category %s: %w", to, ErrForeignKey)
	}
	var n int64
	for id, p := range st.products {
		if p.CategoryID != nil && *p.CategoryID == from {
			target := to
			p.CategoryID = &target
			p.UpdatedAt = time.Now()
			st.products[id] = p
			n++
		}
	}
	return n, nil
}

func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
