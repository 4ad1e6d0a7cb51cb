// Package datapackage models Frictionless-style data package metadata: the
// entity types (units, fields, resources, licenses, contributors, sources),
// their construction-time invariants, and an incremental Builder that
// assembles a complete package document.
package datapackage

import (
	"regexp"
	"strings"

	"datapack/internal/domain"
)

var (
	// packageNameRe is the URL-safe slug accepted for package names.
	packageNameRe = regexp.MustCompile(`^[a-z0-9\-_\.]+$`)
	semverRe      = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9\-\.]+)?$`)
)

// Top-level package keys. Build fails if any required key is absent.
var (
	requiredFields    = []string{"name", "title", "resources", "licenses", "created", "contributors", "sources"}
	recommendedFields = []string{"description", "version"}
	optionalFields    = []string{"profile", "keywords", "homepage", "repository", "image", "id", "modified"}
)

// RequiredFields returns the top-level keys every package document must carry.
func RequiredFields() []string { return append([]string(nil), requiredFields...) }

// RecommendedFields returns the top-level keys a package document should carry.
func RecommendedFields() []string { return append([]string(nil), recommendedFields...) }

// OptionalFields returns the remaining recognised top-level keys.
func OptionalFields() []string { return append([]string(nil), optionalFields...) }

// AllFields returns required, recommended and optional keys in that order.
func AllFields() []string {
	out := RequiredFields()
	out = append(out, recommendedFields...)
	return append(out, optionalFields...)
}

// ValidatePackageName checks the package name slug rules.
func ValidatePackageName(name string) error {
	if name == "" {
		return domain.ErrValidation("invalid package name: package name is required")
	}
	if !packageNameRe.MatchString(name) {
		return domain.ErrValidation("invalid package name %q: only lowercase letters, numbers, hyphens, underscores, and dots are allowed", name)
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return domain.ErrValidation("invalid package name %q: cannot start or end with a dot", name)
	}
	return nil
}

// ValidateVersion checks that version follows semantic versioning.
// An empty version is accepted since the field is optional.
func ValidateVersion(version string) error {
	if version == "" {
		return nil
	}
	if !semverRe.MatchString(version) {
		return domain.ErrValidation("invalid version %q: must follow semantic versioning (e.g. 1.0.0)", version)
	}
	return nil
}

// ValidateURL checks that a non-empty URL uses the http or https scheme.
func ValidateURL(url string) error {
	if url == "" {
		return nil
	}
	if !isHTTPURL(url) {
		return domain.ErrValidation("invalid URL %q: must start with http:// or https://", url)
	}
	return nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
