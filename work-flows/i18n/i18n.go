/*
Package i18n provides the UI string tables for English, Hindi and Punjabi and the
provider that tracks the selected language.
*/
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"pgrkam-assistant/utils"
	"pgrkam-assistant/work-flows/errs"
	"pgrkam-assistant/work-flows/models"
	"pgrkam-assistant/work-flows/storage"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Tables maps each language to its key/value strings.
type Tables map[models.Language]map[string]string

var (
	tablesOnce  sync.Once
	tablesCache Tables
	tablesErr   error
)

// LoadTables parses the embedded locale files once per process.
func LoadTables() (Tables, error) {
	tablesOnce.Do(func() {
		tablesCache, tablesErr = loadTables()
	})
	return tablesCache, tablesErr
}

func loadTables() (Tables, error) {
	tables := make(Tables)
	for _, lang := range models.Languages() {
		data, err := localeFS.ReadFile(path.Join("locales", lang.String()+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s translations: %w", lang, err)
		}

		var table map[string]string
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse %s translations: %w", lang, err)
		}
		tables[lang] = table
	}
	return tables, nil
}

// Lookup returns key in lang, then in the default language, then key itself.
func (t Tables) Lookup(key string, lang models.Language) string {
	if v, ok := t[lang][key]; ok && v != "" {
		return v
	}
	if v, ok := t[models.DefaultLanguage][key]; ok && v != "" {
		return v
	}
	return key
}

// Provider holds the active language. Changes are persisted immediately.
type Provider struct {
	mu        sync.RWMutex
	store     storage.Store
	tables    Tables
	language  models.Language
	listeners []func(models.Language)
}

func NewProvider(store storage.Store) (*Provider, error) {
	tables, err := LoadTables()
	if err != nil {
		return nil, err
	}

	p := &Provider{
		store:    store,
		tables:   tables,
		language: models.DefaultLanguage,
	}

	saved, ok, err := store.Get(storage.KeyLanguage)
	if err != nil {
		utils.Warn("could not read saved language", "error", err.Error())
	} else if ok {
		p.language = normalizeSaved(saved)
	}
	return p, nil
}

// normalizeSaved accepts both short codes and the older locale-tag values.
func normalizeSaved(saved string) models.Language {
	switch saved {
	case "en-US":
		return models.LanguageEnglish
	case "hi-IN":
		return models.LanguageHindi
	case "pa-IN":
		return models.LanguagePunjabi
	}
	if models.IsValidLanguage(saved) {
		return models.Language(saved)
	}
	return models.DefaultLanguage
}

func (p *Provider) Language() models.Language {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.language
}

// Locale is the speech-engine tag for the active language.
func (p *Provider) Locale() string {
	return p.Language().Locale()
}

func (p *Provider) Translate(key string) string {
	return p.tables.Lookup(key, p.Language())
}

// SetLanguage switches and persists the active language, then notifies listeners.
func (p *Provider) SetLanguage(code string) error {
	if !models.IsValidLanguage(code) {
		return errs.Validation("unsupported language %q", code)
	}
	lang := models.Language(code)

	if err := p.store.Set(storage.KeyLanguage, lang.String()); err != nil {
		return fmt.Errorf("failed to save language: %w", err)
	}

	p.mu.Lock()
	p.language = lang
	listeners := append([]func(models.Language){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(lang)
	}
	return nil
}

// OnChange registers fn to run after every language switch.
func (p *Provider) OnChange(fn func(models.Language)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}
