package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Metadata describes an ingested résumé
type Metadata struct {
	Source     string `json:"source"`     // "text" for pasted input, or the file path
	Timestamp  string `json:"timestamp"`  // RFC3339 format
	Hash       string `json:"hash"`       // SHA256 hex digest of the cleaned text
	Characters int    `json:"characters"` // Rune count of the cleaned text
	Lines      int    `json:"lines"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, source string) *Metadata {
	lines := 0
	if content != "" {
		lines = strings.Count(content, "\n") + 1
	}
	return &Metadata{
		Source:     source,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Hash:       computeHash(content),
		Characters: utf8.RuneCountInString(content),
		Lines:      lines,
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
