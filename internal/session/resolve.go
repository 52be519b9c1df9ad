package session

import (
	"errors"
	"fmt"
	"regexp"
)

const DefaultSessionName = "main"

// ErrInvalidName is returned for names outside ^[a-z0-9_-]{1,64}$.
var ErrInvalidName = errors.New("invalid session name")

var nameRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateName checks that name is usable as a directory name.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("%w %q: must match %s", ErrInvalidName, name, nameRegexp)
	}
	return nil
}

// Resolve picks the active session: the --session flag, then the configured
// default, then "main". The result is validated.
func Resolve(flagOverride, configured string) (string, error) {
	name := DefaultSessionName
	switch {
	case flagOverride != "":
		name = flagOverride
	case configured != "":
		name = configured
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
