package core

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Relation names a table in the warehouse. Database and Schema are optional;
// empty parts are omitted when the relation is rendered.
type Relation struct {
	Database string
	Schema   string
	Name     string
}

// String renders the relation as a dot-qualified name.
func (r Relation) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Database, r.Schema, r.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// WithName returns a copy of r in the same database and schema with a different name.
func (r Relation) WithName(name string) Relation {
	r.Name = name
	return r
}

// SchemaRelation returns the qualified schema part (database.schema), or "" if
// the relation has no schema.
func (r Relation) SchemaRelation() string {
	if r.Schema == "" {
		return ""
	}
	if r.Database == "" {
		return r.Schema
	}
	return r.Database + "." + r.Schema
}

// Validate checks that every non-empty part is a plain unquoted identifier.
// Relations are interpolated into SQL text, so anything else is rejected.
func (r Relation) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("relation name is required")
	}
	for _, p := range []string{r.Database, r.Schema, r.Name} {
		if p != "" && !ValidIdentifier(p) {
			return fmt.Errorf("invalid identifier %q in relation %s", p, r)
		}
	}
	return nil
}

// ValidIdentifier reports whether s is a plain unquoted SQL identifier.
func ValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}
