package domain

// RankedResult is a single search hit: document display fields plus the
// query-specific similarity score. Ephemeral output of one ranking pass.
type RankedResult struct {
	documentID int64
	title      string
	content    string
	url        string
	score      float64
}

// NewRankedResult creates a search hit.
func NewRankedResult(documentID int64, title, content, url string, score float64) RankedResult {
	return RankedResult{
		documentID: documentID,
		title:      title,
		content:    content,
		url:        url,
		score:      score,
	}
}

// DocumentID returns the document identifier.
func (r *RankedResult) DocumentID() int64 { return r.documentID }

// Title returns the document title.
func (r *RankedResult) Title() string { return r.title }

// Content returns the document content.
func (r *RankedResult) Content() string { return r.content }

// URL returns the document source URL.
func (r *RankedResult) URL() string { return r.url }

// Score returns the cosine similarity against the query.
func (r *RankedResult) Score() float64 { return r.score }
