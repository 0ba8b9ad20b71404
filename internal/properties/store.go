package properties

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/ini.v1"
)

const (
	// DefaultPath is the properties file read from the working directory when no other path is configured.
	DefaultPath = "application.properties"
	// DefaultSection holds keys inherited by every other section.
	DefaultSection = "DEFAULT"
)

const (
	keyValueDelimiters = "=:"
	commentPrefixes    = "#;"
	// placeholderPrefix names the stand-in keys handed to the ini parser; see flatten.
	placeholderPrefix = "opt"
)

// option is a single key line plus its continuation lines, exactly as written.
type option struct {
	key    string
	lines  []string
	indent int
}

func (o option) value() string {
	return strings.TrimRightFunc(strings.Join(o.lines, "\n"), unicode.IsSpace)
}

// Store is a read-only snapshot of a properties file.
// It is built once by Load or Parse and never mutated, so concurrent readers need no locking.
type Store struct {
	path     string
	sections map[string]map[string]string
}

// Load reads and parses the properties file at path.
// A missing file yields an error wrapping fs.ErrNotExist.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read properties: %w", err)
	}

	store, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	store.path = path
	return store, nil
}

// Parse builds a Store from the raw contents of a properties file.
func Parse(data []byte) (*Store, error) {
	skeleton, options, err := flatten(data)
	if err != nil {
		return nil, err
	}

	file, err := ini.Load(skeleton)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	sections := make(map[string]map[string]string, len(file.Sections()))
	for _, section := range file.Sections() {
		values, ok := sections[section.Name()]
		if !ok {
			values = make(map[string]string, len(section.Keys()))
			sections[section.Name()] = values
		}
		for _, key := range section.Keys() {
			idx, err := strconv.Atoi(strings.TrimPrefix(key.Name(), placeholderPrefix))
			if err != nil || idx < 0 || idx >= len(options) {
				return nil, fmt.Errorf("%w: unexpected key %q", ErrMalformed, key.Name())
			}
			opt := options[idx]
			values[normalizeKey(opt.key)] = opt.value()
		}
	}

	defaults, ok := sections[DefaultSection]
	if !ok {
		defaults = map[string]string{}
		sections[DefaultSection] = defaults
	}
	for name, values := range sections {
		if name == DefaultSection {
			continue
		}
		for key, value := range defaults {
			if _, exists := values[key]; !exists {
				values[key] = value
			}
		}
	}

	return &Store{sections: sections}, nil
}

// flatten collects every option with its continuation lines and rewrites the
// file into a skeleton of section headers and placeholder keys (opt0, opt1, ...).
// The ini parser then resolves sections, merging and DEFAULT without ever
// seeing a raw key or value, so quotes and backticks survive untouched.
// Lines it cannot classify are passed through for the ini parser to reject.
func flatten(data []byte) ([]byte, []option, error) {
	var (
		skeleton bytes.Buffer
		options  []option
		current  = -1
	)

	for n, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			if current >= 0 {
				options[current].lines = append(options[current].lines, "")
			}
			continue
		case strings.ContainsRune(commentPrefixes, rune(trimmed[0])):
			continue
		}

		indent := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
		if current >= 0 && indent > options[current].indent {
			options[current].lines = append(options[current].lines, trimmed)
			continue
		}

		if trimmed[0] == '[' {
			current = -1
			skeleton.WriteString(trimmed + "\n")
			continue
		}

		idx := strings.IndexAny(trimmed, keyValueDelimiters)
		switch {
		case idx < 0:
			current = -1
			skeleton.WriteString(trimmed + "\n")
		case idx == 0:
			return nil, nil, fmt.Errorf("%w: line %d: empty key", ErrMalformed, n+1)
		default:
			options = append(options, option{
				key:    strings.TrimSpace(trimmed[:idx]),
				lines:  []string{strings.TrimSpace(trimmed[idx+1:])},
				indent: indent,
			})
			current = len(options) - 1
			fmt.Fprintf(&skeleton, "%s%d =\n", placeholderPrefix, current)
		}
	}

	return skeleton.Bytes(), options, nil
}

// Get returns the value stored under key in section.
func (s *Store) Get(section, key string) (string, error) {
	values, ok := s.sections[section]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingSection, section)
	}

	value, ok := values[normalizeKey(key)]
	if !ok {
		return "", fmt.Errorf("%w: %q in section %q", ErrMissingKey, key, section)
	}
	return value, nil
}

// Path reports the file the store was loaded from. It is empty for stores built by Parse.
func (s *Store) Path() string {
	return s.path
}

func normalizeKey(key string) string {
	return strings.ToLower(key)
}
