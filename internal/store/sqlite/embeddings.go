package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/newsdex/newsdex/internal/domain"
	"github.com/newsdex/newsdex/internal/rank"
)

// InsertEmbedding persists a document vector.
func (s *Store) InsertEmbedding(ctx context.Context, emb domain.Embedding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (document_id, vector) VALUES (?, ?)
	`, emb.DocumentID(), vectorToBytes(emb.Vector()))
	if err != nil {
		return fmt.Errorf("inserting embedding for document %d: %w", emb.DocumentID(), err)
	}
	return nil
}

// FetchAllEmbeddings returns a point-in-time snapshot of the full corpus in
// insertion order. Rows with corrupt vector blobs are dropped from the
// snapshot; the ranker handles dimension checks per entry.
func (s *Store) FetchAllEmbeddings(ctx context.Context) ([]rank.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, vector FROM embeddings ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("fetching embeddings: %w", err)
	}
	defer rows.Close()

	var entries []rank.Entry
	for rows.Next() {
		var (
			docID int64
			blob  []byte
		)
		if err := rows.Scan(&docID, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		vec, err := bytesToVector(blob)
		if err != nil {
			continue
		}
		entries = append(entries, rank.Entry{DocumentID: docID, Vector: vec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}
	return entries, nil
}

// vectorToBytes encodes a vector as little-endian float32s.
func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
