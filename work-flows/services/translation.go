package services

import (
	"fmt"
	"strings"

	googletranslatefree "github.com/bas24/googletranslatefree"
)

// translateFunc is swapped out in tests.
var translateFunc = googletranslatefree.Translate

// ReplyTranslator translates assistant replies on demand. The stored
// transcript is never rewritten.
type ReplyTranslator struct {
	sourceLang string
	targetLang string
}

func NewTranslator(sourceLang, targetLang string) *ReplyTranslator {
	if sourceLang == "" {
		sourceLang = "auto"
	}
	return &ReplyTranslator{
		sourceLang: sourceLang,
		targetLang: targetLang,
	}
}

func (t *ReplyTranslator) Translate(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	translatedText, err := translateFunc(text, t.sourceLang, t.targetLang)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	return translatedText, nil
}
