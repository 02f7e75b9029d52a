package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"testing"
)

func TestVecExtensionLoaded(t *testing.T) {
	db, err := sql.Open("sqlite3_vec", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	var version string
	err = db.QueryRow("SELECT vec_version()").Scan(&version)
	if err != nil {
		t.Fatalf("Failed to query vec_version(): %v.\nIt seems the extension is not linked or loaded correctly.", err)
	}

	if version == "" {
		t.Error("Expected a version string, got empty")
	}
}

func TestChunkVectorRelation(t *testing.T) {
	db, err := sql.Open("sqlite3_vec", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chunk_id TEXT UNIQUE,
		text TEXT
	)`)
	if err != nil {
		t.Fatal(err)
	}

	// rowid is the implicit primary key of a vec0 table.
	_, err = db.Exec(`CREATE VIRTUAL TABLE chunks_vec USING vec0(embedding float[3] distance_metric=cosine)`)
	if err != nil {
		t.Fatal(err)
	}

	res, err := db.Exec(`INSERT INTO chunks (chunk_id, text) VALUES (?, ?)`, "c1", "store hours")
	if err != nil {
		t.Fatal(err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		t.Fatal(err)
	}

	vec := []float32{0.1, 0.2, 0.3}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(`INSERT INTO chunks_vec(rowid, embedding) VALUES (?, ?)`, rowID, buf.Bytes()); err != nil {
		t.Fatalf("Failed to insert vector with rowid: %v", err)
	}

	var gotText string
	var gotDistance float64
	err = db.QueryRow(`
		SELECT c.text, v.distance
		FROM chunks_vec v
		JOIN chunks c ON c.id = v.rowid
		WHERE v.embedding MATCH ? AND k = 1
		ORDER BY v.distance`, buf.Bytes()).Scan(&gotText, &gotDistance)
	if err != nil {
		t.Fatalf("KNN query failed: %v", err)
	}

	if gotText != "store hours" {
		t.Errorf("Expected text 'store hours', got %q", gotText)
	}
	if gotDistance > 1e-5 {
		t.Errorf("Expected near-zero cosine distance for identical vector, got %f", gotDistance)
	}
}
