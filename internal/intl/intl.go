// Package intl provides localized strings for everything the interpreter
// shows to the user. String tables are TOML files embedded in the binary, one
// per locale.
package intl

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/dekarrin/branchling/internal/store"
	"golang.org/x/text/language"
)

// Fallback is the locale whose table is consulted when the active locale does
// not define a key. It must always be present.
const Fallback = "en_US"

//go:embed locales/*.toml
var localeFiles embed.FS

// Table is the strings for a single locale.
type Table struct {
	Locale  string            `toml:"locale"`
	Name    string            `toml:"name"`
	Strings map[string]string `toml:"strings"`
}

// Catalog holds the string tables of every available locale.
//
// Catalog should not be used directly; create one with Load or LoadFS.
type Catalog struct {
	tables  map[string]Table
	names   []string
	matcher language.Matcher
}

// Load loads the string tables embedded in the binary.
func Load() (*Catalog, error) {
	return LoadFS(localeFiles, "locales")
}

// LoadFS loads every *.toml string table in dir of fsys. One of them must be
// the Fallback locale.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locale dir: %w", err)
	}

	cat := &Catalog{tables: map[string]Table{}}
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".toml") {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, ent.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ent.Name(), err)
		}

		var tab Table
		if _, err := toml.Decode(string(data), &tab); err != nil {
			return nil, fmt.Errorf("%s: %w", ent.Name(), err)
		}
		if tab.Locale == "" {
			return nil, fmt.Errorf("%s: must have non-blank 'locale' field", ent.Name())
		}
		if _, ok := cat.tables[tab.Locale]; ok {
			return nil, fmt.Errorf("%s: locale %q is defined more than once", ent.Name(), tab.Locale)
		}
		cat.tables[tab.Locale] = tab
	}

	if _, ok := cat.tables[Fallback]; !ok {
		return nil, fmt.Errorf("no string table for fallback locale %q", Fallback)
	}

	// fallback goes first so that it is what the matcher picks when nothing
	// else is close
	cat.names = append(cat.names, Fallback)
	for name := range cat.tables {
		if name != Fallback {
			cat.names = append(cat.names, name)
		}
	}
	sort.Strings(cat.names[1:])

	tags := make([]language.Tag, len(cat.names))
	for i, name := range cat.names {
		tags[i] = language.Make(bcp47(name))
	}
	cat.matcher = language.NewMatcher(tags)

	return cat, nil
}

// Locales returns the names of all available locales. The Fallback locale is
// always first.
func (cat *Catalog) Locales() []string {
	return append([]string{}, cat.names...)
}

// DisplayName returns the human name of the locale, such as "Deutsch".
func (cat *Catalog) DisplayName(locale string) string {
	return cat.tables[cat.Resolve(locale)].Name
}

// Resolve returns the available locale that best serves a request for loc.
// "de_DE", "de-DE", and "de" all resolve to "de_DE" if it is available; a
// locale with nothing close resolves to Fallback.
func (cat *Catalog) Resolve(loc string) string {
	if _, ok := cat.tables[loc]; ok {
		return loc
	}

	tag, err := language.Parse(bcp47(loc))
	if err != nil {
		return Fallback
	}

	_, idx, conf := cat.matcher.Match(tag)
	if conf == language.No {
		return Fallback
	}
	return cat.names[idx]
}

// Translator looks up strings in a Catalog for the locale currently held in a
// store.Locale.
//
// Translator should not be used directly; create one with
// Catalog.Translator.
type Translator struct {
	cat    *Catalog
	locale store.Locale
	log    *log.Logger
}

// Translator returns a Translator that reads the active locale from loc on
// every lookup. If loc is nil, Fallback is always used. If logger is nil,
// nothing is logged.
func (cat *Catalog) Translator(loc store.Locale, logger *log.Logger) *Translator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Translator{cat: cat, locale: loc, log: logger}
}

// Catalog returns the catalog that tr looks strings up in.
func (tr *Translator) Catalog() *Catalog {
	return tr.cat
}

// Locale returns the available locale currently in use.
func (tr *Translator) Locale() string {
	if tr.locale == nil {
		return Fallback
	}
	return tr.cat.Resolve(tr.locale.Locale())
}

// Str gives the string for key in the active locale with every {name}
// placeholder replaced by subs[name]. If the active locale does not have key,
// the Fallback locale is used; if that does not have it either, the key is
// returned in brackets.
func (tr *Translator) Str(key string, subs map[string]string) string {
	loc := tr.Locale()

	s, ok := tr.cat.tables[loc].Strings[key]
	if !ok {
		s, ok = tr.cat.tables[Fallback].Strings[key]
		if !ok {
			tr.log.Warn("missing string", "key", key, "locale", loc)
			return "[" + key + "]"
		}
		tr.log.Debug("string not translated", "key", key, "locale", loc)
	}

	return substitute(s, subs)
}

// Todo returns text unchanged. It marks text that is shown to the user but has
// not been added to the string tables yet.
func (tr *Translator) Todo(text string) string {
	tr.log.Debug("untranslated text", "text", text)
	return text
}

func substitute(s string, subs map[string]string) string {
	if len(subs) == 0 {
		return s
	}

	keys := make([]string, 0, len(subs))
	for k := range subs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	oldnew := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		oldnew = append(oldnew, "{"+k+"}", subs[k])
	}
	return strings.NewReplacer(oldnew...).Replace(s)
}

func bcp47(loc string) string {
	return strings.ReplaceAll(loc, "_", "-")
}
