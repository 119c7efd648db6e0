package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

func TestWriterServiceAppendsNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "hits.ndjson")
	w := &WriterService{FilePath: path}

	input := make(chan domain.Hit)
	var wg sync.WaitGroup
	wg.Add(1)
	go w.Start(&wg, input)

	input <- domain.Hit{ID: "a", Title: "first", Alerted: true, KeywordsHit: []string{"urgent"}}
	input <- domain.Hit{ID: "b", Title: "second", FlairColor: "blue"}
	close(input)
	wg.Wait()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var hits []domain.Hit
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var h domain.Hit
		if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		hits = append(hits, h)
	}
	if len(hits) != 2 || hits[0].ID != "a" || hits[1].FlairColor != "blue" {
		t.Fatalf("hits = %+v", hits)
	}
	if !hits[0].Alerted || hits[0].KeywordsHit[0] != "urgent" {
		t.Fatalf("first hit = %+v", hits[0])
	}
}

func TestWriterServiceDrainsWhenFileUnavailable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w := &WriterService{FilePath: filepath.Join(blocker, "hits.ndjson")}

	input := make(chan domain.Hit)
	var wg sync.WaitGroup
	wg.Add(1)
	go w.Start(&wg, input)

	input <- domain.Hit{ID: "a"}
	close(input)
	wg.Wait()
}
