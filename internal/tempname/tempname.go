// Package tempname allocates uniquely-named files and directories from
// templates ending in a placeholder run ("prefix-XXXX"). The run is
// replaced with random characters; on a name collision a fresh name is
// drawn and the create retried.
package tempname

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MinPlaceholder is the minimum length of the trailing placeholder run.
const MinPlaceholder = 4

const (
	alphabet   = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxRetries = 10000
)

// ErrBadTemplate is returned when a template does not end in a
// placeholder run of at least MinPlaceholder characters.
var ErrBadTemplate = errors.New("template must end in at least 4 'X' characters")

// split separates the template into its fixed prefix and the length of
// the trailing placeholder run.
func split(template string) (prefix string, run int, err error) {
	run = len(template) - len(strings.TrimRight(template, "X"))
	if run < MinPlaceholder {
		return "", 0, fmt.Errorf("%q: %w", template, ErrBadTemplate)
	}
	return template[:len(template)-run], run, nil
}

func randomSuffix(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("drawing random name: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

// Create opens a new file in dir named after template with the
// placeholder run expanded, suffix appended verbatim. The file is opened
// O_RDWR|O_CREATE|O_EXCL with mode 0600.
func Create(dir, template, suffix string) (*os.File, error) {
	prefix, run, err := split(template)
	if err != nil {
		return nil, err
	}
	for i := 0; i < maxRetries; i++ {
		name, err := randomSuffix(run)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, prefix+name+suffix)
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
		if os.IsExist(err) {
			continue
		}
		return f, err
	}
	return nil, fmt.Errorf("creating file from template %q in %s: too many collisions", template, dir)
}

// Mkdir creates a new directory under parent named after template with
// the placeholder run expanded, mode 0700, and returns its path.
func Mkdir(parent, template string) (string, error) {
	prefix, run, err := split(template)
	if err != nil {
		return "", err
	}
	for i := 0; i < maxRetries; i++ {
		name, err := randomSuffix(run)
		if err != nil {
			return "", err
		}
		path := filepath.Join(parent, prefix+name)
		err = os.Mkdir(path, 0700)
		if os.IsExist(err) {
			continue
		}
		return path, err
	}
	return "", fmt.Errorf("creating directory from template %q in %s: too many collisions", template, parent)
}
