// Package secret resolves credential references in target configuration.
//
// Two forms are recognized:
//
//	${NAME}                 replaced by the NAME environment variable
//	keyring:name            the OS keyring secret "name" under the datespine service
//	keyring:service/name    the OS keyring secret "name" under service
package secret

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService is the keyring service used when a reference names none.
const KeyringService = "datespine"

const keyringPrefix = "keyring:"

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// Resolver expands secret references.
type Resolver struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// Keyring defaults to keyring.Get.
	Keyring func(service, user string) (string, error)
}

// Default resolves against the process environment and the OS keyring.
var Default = &Resolver{}

// Resolve expands s with the Default resolver.
func Resolve(s string) (string, error) {
	return Default.Resolve(s)
}

// IsReference reports whether s contains a secret reference.
func IsReference(s string) bool {
	return strings.HasPrefix(s, keyringPrefix) || envRef.MatchString(s)
}

// Resolve expands s. Unset environment variables are left in place so the
// failure surfaces where the value is used; a missing keyring entry is an error.
func (r *Resolver) Resolve(s string) (string, error) {
	if ref, ok := strings.CutPrefix(s, keyringPrefix); ok {
		return r.fromKeyring(ref)
	}

	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := lookup(match[2 : len(match)-1]); ok && val != "" {
			return val
		}
		return match
	}), nil
}

func (r *Resolver) fromKeyring(ref string) (string, error) {
	service, user := KeyringService, ref
	if before, after, ok := strings.Cut(ref, "/"); ok {
		service, user = before, after
	}
	if service == "" || user == "" {
		return "", fmt.Errorf("invalid keyring reference %q (want keyring:name or keyring:service/name)", keyringPrefix+ref)
	}

	get := r.Keyring
	if get == nil {
		get = keyring.Get
	}
	val, err := get(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("keyring secret %s/%s not found", service, user)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read keyring secret %s/%s: %w", service, user, err)
	}
	return val, nil
}

// Redact masks a resolved secret for display.
func Redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
