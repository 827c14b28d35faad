// Package admin implements the back-office surface for the catalog. Each
// entity is registered as explicit configuration data (list columns, filters,
// form fields, inline children) consumed by one generic set of handlers,
// rather than a per-entity view hierarchy.
package admin

import (
	"sort"

	"gorm.io/gorm"
)

// Option is one choice in a select input or filter.
type Option struct {
	Value string
	Label string
}

// Column describes one cell of the admin list table.
type Column struct {
	Title string
	Value func(obj any) string
}

// Filter narrows the admin list by a query parameter.
type Filter struct {
	Name    string // query parameter name
	Label   string
	Options func(db *gorm.DB) []Option
	Apply   func(query *gorm.DB, value string) *gorm.DB
}

// Field describes one editable input on the admin form.
type Field struct {
	Name     string // form input name
	Label    string
	Type     string // "text", "textarea", "date", "select"
	Required bool
	Options  func(db *gorm.DB) []Option
	Get      func(obj any) string
	Set      func(db *gorm.DB, obj any, value string) error
}

// InlineRow is one related record shown inside a parent's edit page.
type InlineRow struct {
	Text string
	URL  string
}

// Inline lists related child records on the parent form, read-only with links
// to the child's own admin page.
type Inline struct {
	Title string
	Rows  func(obj any) []InlineRow
}

// ModelAdmin is the declarative registration of one entity with the admin
// surface. The resource closures bind it to storage; everything else is
// display configuration.
type ModelAdmin struct {
	Name        string // singular display name
	Plural      string
	Slug        string // URL segment
	ListDisplay []Column
	ListFilters []Filter
	Fields      []Field
	Inlines     []Inline

	// Storage binding.
	List   func(db *gorm.DB, filters map[string]string) ([]any, error)
	Get    func(db *gorm.DB, id string) (any, error)
	New    func() any
	Save   func(db *gorm.DB, obj any) error
	Delete func(db *gorm.DB, id string) error
	ID     func(obj any) string
}

// Registry holds every registered ModelAdmin, addressable by slug.
type Registry struct {
	models map[string]*ModelAdmin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*ModelAdmin)}
}

// Register adds a model registration. Later registrations with the same slug
// replace earlier ones.
func (r *Registry) Register(m *ModelAdmin) {
	r.models[m.Slug] = m
}

// Lookup returns the registration for a slug.
func (r *Registry) Lookup(slug string) (*ModelAdmin, bool) {
	m, ok := r.models[slug]
	return m, ok
}

// All returns every registration sorted by display name.
func (r *Registry) All() []*ModelAdmin {
	all := make([]*ModelAdmin, 0, len(r.models))
	for _, m := range r.models {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}
