// Package preferences persists user preferences. Today that is only the
// display language.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/dbehnke/relaisblick/internal/database"
	"github.com/dbehnke/relaisblick/internal/logger"
)

// LanguageKey is the storage key of the language preference.
const LanguageKey = "relaisblick-language"

// Language is a supported UI language.
type Language string

const (
	German  Language = "de"
	English Language = "en"
)

// DefaultLanguage is used when nothing (or nothing valid) is stored.
const DefaultLanguage = German

// Languages lists the supported languages, default first.
var Languages = []Language{German, English}

// ErrUnsupportedLanguage is returned for languages other than de and en.
var ErrUnsupportedLanguage = errors.New("unsupported language")

var matcher = language.NewMatcher([]language.Tag{language.German, language.English})

// ParseLanguage maps a language tag such as "en", "EN", "en-GB" or "de-AT"
// to a supported language.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedLanguage)
	}

	_, index, confidence := matcher.Match(tag)
	if confidence < language.High {
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedLanguage)
	}
	return Languages[index], nil
}

// Store is the key/value backend of the language store.
type Store interface {
	Get(key string) (*database.Preference, error)
	Set(key, value string) error
	Delete(key string) error
}

// LanguageStore reads and writes the language preference.
type LanguageStore struct {
	store Store
	log   *logger.Logger

	mu sync.Mutex
}

// NewLanguageStore creates a language store backed by store.
func NewLanguageStore(store Store, log *logger.Logger) *LanguageStore {
	return &LanguageStore{
		store: store,
		log:   logger.OrNop(log).Named("preferences"),
	}
}

// Language returns the stored language. Missing or unrecognised values
// yield DefaultLanguage; storage errors are returned together with it.
func (s *LanguageStore) Language(ctx context.Context) (Language, error) {
	if err := ctx.Err(); err != nil {
		return DefaultLanguage, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pref, err := s.store.Get(LanguageKey)
	if errors.Is(err, database.ErrNotFound) {
		return DefaultLanguage, nil
	}
	if err != nil {
		return DefaultLanguage, fmt.Errorf("failed to read language: %w", err)
	}

	lang, err := ParseLanguage(pref.Value)
	if err != nil {
		s.log.Debugw("Ignoring stored language", "value", pref.Value)
		return DefaultLanguage, nil
	}
	return lang, nil
}

// SetLanguage validates and persists lang.
func (s *LanguageStore) SetLanguage(ctx context.Context, lang Language) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if lang != German && lang != English {
		return fmt.Errorf("%q: %w", lang, ErrUnsupportedLanguage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(LanguageKey, string(lang)); err != nil {
		return fmt.Errorf("failed to store language: %w", err)
	}
	s.log.Infow("Language changed", "language", lang)
	return nil
}

// Reset forgets the stored language so DefaultLanguage applies again.
func (s *LanguageStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(LanguageKey); err != nil {
		return fmt.Errorf("failed to reset language: %w", err)
	}
	s.log.Infow("Language reset", "language", DefaultLanguage)
	return nil
}
