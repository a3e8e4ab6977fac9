package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// checkRowsErr checks for errors that may have occurred during row
// iteration. Call after a for rows.Next() loop to catch failures that
// rows.Next() doesn't report directly.
func checkRowsErr(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}
	return nil
}

// === Embedding helpers ===

// Embeddings are stored as little-endian float32 BLOBs.

func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		bits := math.Float32bits(f)
		buf[i*4] = byte(bits)
		buf[i*4+1] = byte(bits >> 8)
		buf[i*4+2] = byte(bits >> 16)
		buf[i*4+3] = byte(bits >> 24)
	}
	return buf
}

func bytesToFloat32Slice(buf []byte) []float32 {
	floats := make([]float32, len(buf)/4)
	for i := range floats {
		bits := uint32(buf[i*4]) | uint32(buf[i*4+1])<<8 | uint32(buf[i*4+2])<<16 | uint32(buf[i*4+3])<<24
		floats[i] = math.Float32frombits(bits)
	}
	return floats
}

// === JSON property helpers ===

func marshalProps(props map[string]any) ([]byte, error) {
	if len(props) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("marshal properties: %w", err)
	}
	return b, nil
}

func unmarshalProps(raw sql.NullString) map[string]any {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var props map[string]any
	if err := json.Unmarshal([]byte(raw.String), &props); err != nil {
		return nil
	}
	return props
}

// === Timestamp helpers ===

// Timestamps are stored as RFC3339 strings.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
