// Package i18n maps (key, language) pairs to display strings.
//
// Catalogs are embedded YAML files, one per language. A lookup never fails: an
// unknown language or key yields the caller's fallback.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is the catalog used when nothing else matches.
const DefaultLanguage = "EN"

type catalogFile struct {
	Language string            `yaml:"language"`
	Name     string            `yaml:"name"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds every loaded language.
type Catalog struct {
	messages map[string]map[string]string
	names    map[string]string
	codes    []string
	matcher  language.Matcher
}

//go:embed locales/*.yaml
var embeddedFS embed.FS

var defaultCatalog = mustLoadEmbedded()

// Default returns the process-wide embedded catalog.
func Default() *Catalog { return defaultCatalog }

func mustLoadEmbedded() *Catalog {
	c, err := LoadFromFS(embeddedFS)
	if err != nil {
		panic(fmt.Sprintf("i18n: load embedded catalogs: %v", err))
	}
	return c
}

// LoadFromFS reads locales/*.yaml from fsys.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	c := &Catalog{
		messages: map[string]map[string]string{},
		names:    map[string]string{},
	}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		code := strings.ToUpper(strings.TrimSpace(f.Language))
		if code == "" {
			return nil, fmt.Errorf("catalog %s: language is required", path)
		}
		if _, dup := c.messages[code]; dup {
			return nil, fmt.Errorf("catalog %s: duplicate language %s", path, code)
		}
		if _, err := language.Parse(code); err != nil {
			return nil, fmt.Errorf("catalog %s: invalid language %q: %w", path, code, err)
		}
		c.messages[code] = f.Messages
		c.names[code] = f.Name
		c.codes = append(c.codes, code)
	}
	if _, ok := c.messages[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("default language %s is not defined", DefaultLanguage)
	}

	// The default language goes first so the matcher falls back to it.
	sort.SliceStable(c.codes, func(i, j int) bool { return c.codes[i] == DefaultLanguage })
	tags := make([]language.Tag, len(c.codes))
	for i, code := range c.codes {
		tags[i] = language.MustParse(code)
	}
	c.matcher = language.NewMatcher(tags)
	return c, nil
}

// Languages lists the supported codes, default first.
func (c *Catalog) Languages() []string {
	return append([]string(nil), c.codes...)
}

// Name returns the display name of a language code.
func (c *Catalog) Name(code string) string {
	return c.names[c.normalize(code)]
}

// Lookup returns the message for key in lang, or the key itself.
func (c *Catalog) Lookup(key, lang string) string {
	return c.T(key, lang, key)
}

// T returns the message for key in lang, or fallback when the language or
// key is unknown or the message is empty.
func (c *Catalog) T(key, lang, fallback string) string {
	msgs, ok := c.messages[c.normalize(lang)]
	if !ok {
		return fallback
	}
	if msg := msgs[key]; msg != "" {
		return msg
	}
	return fallback
}

// Messages returns a copy of the full table for lang; nil when unknown.
func (c *Catalog) Messages(lang string) map[string]string {
	msgs, ok := c.messages[c.normalize(lang)]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(msgs))
	for k, v := range msgs {
		out[k] = v
	}
	return out
}

// Match picks the best supported code for an Accept-Language header value.
func (c *Catalog) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	return c.codes[idx]
}

// normalize maps "en", "EN" and "es-MX" style input to catalog codes.
// Unknown input is returned upper-cased and will miss the catalog.
func (c *Catalog) normalize(lang string) string {
	code := strings.ToUpper(strings.TrimSpace(lang))
	if _, ok := c.messages[code]; ok {
		return code
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	return strings.ToUpper(base.String())
}

// Lookup resolves key in lang against the default catalog.
func Lookup(key, lang string) string { return defaultCatalog.Lookup(key, lang) }

// T resolves key in lang against the default catalog with an explicit fallback.
func T(key, lang, fallback string) string { return defaultCatalog.T(key, lang, fallback) }
