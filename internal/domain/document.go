package domain

import (
	"fmt"
	"strings"
	"time"
)

// Document is the durable record of one ingested text unit. Created by
// ingestion, never mutated afterwards; the search path only reads it.
type Document struct {
	id        int64
	title     string
	content   string
	url       string
	createdAt time.Time
}

// NewDocument validates and builds a document for ingestion (id not yet
// assigned by the store).
func NewDocument(title, content, url string) (Document, error) {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	if url == "" {
		return Document{}, fmt.Errorf("document url is required")
	}
	if title == "" && strings.TrimSpace(content) == "" {
		return Document{}, fmt.Errorf("document needs a title or content")
	}
	return Document{
		title:     title,
		content:   content,
		url:       url,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructDocument restores a document from storage without validation.
func ReconstructDocument(id int64, title, content, url string, createdAt time.Time) Document {
	return Document{id: id, title: title, content: content, url: url, createdAt: createdAt}
}

// ID returns the store-assigned identifier (0 before insert).
func (d *Document) ID() int64 { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Content returns the document body text.
func (d *Document) Content() string { return d.content }

// URL returns the unique source URL.
func (d *Document) URL() string { return d.url }

// CreatedAt returns the ingestion timestamp.
func (d *Document) CreatedAt() time.Time { return d.createdAt }
