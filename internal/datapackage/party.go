package datapackage

import (
	"strings"

	"datapack/internal/domain"
)

// ContributorRole is the part a contributor played in producing the package.
type ContributorRole string

// Contributor roles.
const (
	RoleAuthor      ContributorRole = "author"
	RoleContributor ContributorRole = "contributor"
	RoleMaintainer  ContributorRole = "maintainer"
	RolePublisher   ContributorRole = "publisher"
	RoleWrangler    ContributorRole = "wrangler"
)

var validRoles = map[ContributorRole]bool{
	RoleAuthor:      true,
	RoleContributor: true,
	RoleMaintainer:  true,
	RolePublisher:   true,
	RoleWrangler:    true,
}

// License identifies the terms the package is published under.
type License struct {
	Name  string
	Title string
	Path  string
}

// NewLicense validates and returns a License. An empty name selects the
// CC-BY-4.0 template.
func NewLicense(name, title, path string) (*License, error) {
	if name == "" {
		l := CommonLicenses["CC-BY-4.0"]
		return &l, nil
	}
	if path != "" && !isHTTPURL(path) {
		return nil, domain.ErrValidation("license path %q must be a valid http or https URL", path)
	}
	return &License{Name: name, Title: title, Path: path}, nil
}

// ToMap renders the license in document form.
func (l *License) ToMap() map[string]any {
	out := map[string]any{"name": l.Name}
	if l.Title != "" {
		out["title"] = l.Title
	}
	if l.Path != "" {
		out["path"] = l.Path
	}
	return out
}

// Contributor is a person or organisation credited in the package.
type Contributor struct {
	Name         string
	Role         ContributorRole
	Email        string
	Organization string
}

// NewContributor validates and returns a Contributor. An empty role defaults
// to author.
func NewContributor(name string, role ContributorRole, email, organization string) (*Contributor, error) {
	if name == "" {
		return nil, domain.ErrValidation("contributor name is required")
	}
	if role == "" {
		role = RoleAuthor
	}
	if !validRoles[role] {
		return nil, domain.ErrValidation("contributor %q: role must be one of: author, contributor, maintainer, publisher, wrangler", name)
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, domain.ErrValidation("contributor %q: email must contain @ symbol", name)
	}
	return &Contributor{Name: name, Role: role, Email: email, Organization: organization}, nil
}

// ToMap renders the contributor in document form.
func (c *Contributor) ToMap() map[string]any {
	out := map[string]any{
		"name": c.Name,
		"role": string(c.Role),
	}
	if c.Email != "" {
		out["email"] = c.Email
	}
	if c.Organization != "" {
		out["organization"] = c.Organization
	}
	return out
}

// Source is where the packaged data came from.
type Source struct {
	Title       string
	Path        string
	Description string
}

// NewSource validates and returns a Source. Path may be a URL or a relative
// file path; URLs must use http or https.
func NewSource(title, path, description string) (*Source, error) {
	if title == "" {
		return nil, domain.ErrValidation("source title is required")
	}
	if strings.Contains(path, "://") && !isHTTPURL(path) && !strings.HasPrefix(path, "file://") {
		return nil, domain.ErrValidation("source %q: path %q must be an http, https or file URL", title, path)
	}
	return &Source{Title: title, Path: path, Description: description}, nil
}

// ToMap renders the source in document form.
func (s *Source) ToMap() map[string]any {
	out := map[string]any{"title": s.Title}
	if s.Path != "" {
		out["path"] = s.Path
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	return out
}
