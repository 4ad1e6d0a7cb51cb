package datapackage

import (
	"time"

	"datapack/internal/domain"
)

// Builder assembles a package document field by field. Every setter checks
// its input immediately; the first failure is kept, later calls become
// no-ops and Build returns it. Use Err to fail fast between steps.
type Builder struct {
	metadata     map[string]any
	licenses     []*License
	contributors []*Contributor
	sources      []*Source
	resources    []*Resource
	err          error
}

// NewBuilder returns a Builder whose creation date is today.
func NewBuilder() *Builder {
	return NewBuilderAt(time.Now())
}

// NewBuilderAt returns a Builder whose creation date is derived from now.
func NewBuilderAt(now time.Time) *Builder {
	b := &Builder{metadata: map[string]any{}}
	return b.SetDates(now.Format(time.DateOnly), "")
}

// Err returns the first error recorded by the builder, if any.
func (b *Builder) Err() error { return b.err }

// SetBasicInfo sets the name, title, description and version. The name must be
// a URL-safe slug and the version, when given, a semantic version.
func (b *Builder) SetBasicInfo(name, title, description, version string) *Builder {
	if b.err != nil {
		return b
	}
	if err := ValidatePackageName(name); err != nil {
		b.err = err
		return b
	}
	if err := ValidateVersion(version); err != nil {
		b.err = err
		return b
	}
	b.metadata["name"] = name
	if title != "" {
		b.metadata["title"] = title
	}
	if description != "" {
		b.metadata["description"] = description
	}
	if version != "" {
		b.metadata["version"] = version
	}
	return b
}

// SetProfile sets the package profile (e.g. "tabular-data-package").
func (b *Builder) SetProfile(profile string) *Builder {
	if b.err != nil {
		return b
	}
	b.metadata["profile"] = profile
	return b
}

// SetKeywords sets the discovery keywords.
func (b *Builder) SetKeywords(keywords []string) *Builder {
	if b.err != nil {
		return b
	}
	list := make([]any, len(keywords))
	for i, k := range keywords {
		list[i] = k
	}
	b.metadata["keywords"] = list
	return b
}

// SetDates sets the creation and modification dates; empty values are ignored.
func (b *Builder) SetDates(created, modified string) *Builder {
	if b.err != nil {
		return b
	}
	if created != "" {
		b.metadata["created"] = created
	}
	if modified != "" {
		b.metadata["modified"] = modified
	}
	return b
}

// SetLinks sets the homepage and repository URLs; empty values are ignored.
func (b *Builder) SetLinks(homepage, repository string) *Builder {
	if b.err != nil {
		return b
	}
	if homepage != "" {
		if err := ValidateURL(homepage); err != nil {
			b.err = domain.ErrValidation("invalid homepage URL: %v", err)
			return b
		}
		b.metadata["homepage"] = homepage
	}
	if repository != "" {
		if err := ValidateURL(repository); err != nil {
			b.err = domain.ErrValidation("invalid repository URL: %v", err)
			return b
		}
		b.metadata["repository"] = repository
	}
	return b
}

// AddLicense appends a license. An empty name adds CC-BY-4.0.
func (b *Builder) AddLicense(name, title, path string) *Builder {
	if b.err != nil {
		return b
	}
	l, err := NewLicense(name, title, path)
	if err != nil {
		b.err = err
		return b
	}
	b.licenses = append(b.licenses, l)
	return b
}

// AddContributor appends a contributor. An empty role means author.
func (b *Builder) AddContributor(name string, role ContributorRole, email, organization string) *Builder {
	if b.err != nil {
		return b
	}
	c, err := NewContributor(name, role, email, organization)
	if err != nil {
		b.err = err
		return b
	}
	b.contributors = append(b.contributors, c)
	return b
}

// AddSource appends a data source.
func (b *Builder) AddSource(title, path, description string) *Builder {
	if b.err != nil {
		return b
	}
	s, err := NewSource(title, path, description)
	if err != nil {
		b.err = err
		return b
	}
	b.sources = append(b.sources, s)
	return b
}

// AddResource appends a resource built with NewResource.
func (b *Builder) AddResource(r *Resource) *Builder {
	if b.err != nil {
		return b
	}
	if r == nil {
		b.err = domain.ErrValidation("resource is nil")
		return b
	}
	b.resources = append(b.resources, r)
	return b
}

// Build returns the assembled document. It fails if an earlier step failed,
// if no resource was added, or if a required top-level key is missing.
func (b *Builder) Build() (Document, error) {
	if b.err != nil {
		return nil, b.err
	}

	doc := Document{}
	for k, v := range b.metadata {
		doc[k] = v
	}
	if len(b.licenses) > 0 {
		doc["licenses"] = licensesToList(b.licenses)
	}
	if len(b.contributors) > 0 {
		doc["contributors"] = contributorsToList(b.contributors)
	}
	if len(b.sources) > 0 {
		doc["sources"] = sourcesToList(b.sources)
	}

	if len(b.resources) == 0 {
		return nil, domain.ErrValidation("at least one resource is required")
	}
	doc["resources"] = resourcesToList(b.resources)

	for _, key := range requiredFields {
		if _, ok := doc[key]; !ok {
			return nil, domain.ErrValidation("required field %q is missing", key)
		}
	}
	return doc, nil
}

// CurrentState returns the builder's accumulated state for display, without
// checking completeness.
func (b *Builder) CurrentState() map[string]any {
	metadata := make(map[string]any, len(b.metadata))
	for k, v := range b.metadata {
		metadata[k] = v
	}
	return map[string]any{
		"metadata":     metadata,
		"licenses":     licensesToList(b.licenses),
		"contributors": contributorsToList(b.contributors),
		"sources":      sourcesToList(b.sources),
		"resources":    resourcesToList(b.resources),
	}
}

func licensesToList(in []*License) []any {
	out := make([]any, len(in))
	for i, l := range in {
		out[i] = l.ToMap()
	}
	return out
}

func contributorsToList(in []*Contributor) []any {
	out := make([]any, len(in))
	for i, c := range in {
		out[i] = c.ToMap()
	}
	return out
}

func sourcesToList(in []*Source) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s.ToMap()
	}
	return out
}

func resourcesToList(in []*Resource) []any {
	out := make([]any, len(in))
	for i, r := range in {
		out[i] = r.ToMap()
	}
	return out
}
