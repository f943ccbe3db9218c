package storage

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/rocksoup/mbtheme/internal/domain"
)

func TestResultDocumentBSONRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	result := domain.Updated(domain.Movie{Title: "Dune", Year: "2021"}, "https://img/d.jpg", "https://blog/1", false)

	raw, err := bson.Marshal(toDocument("id-1", "run-1", at, result))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var keys bson.M
	if err := bson.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("unmarshal keys: %v", err)
	}
	for _, k := range []string{"_id", "run_id", "recorded_at", "outcome", "post_url"} {
		if _, ok := keys[k]; !ok {
			t.Fatalf("missing key %q in %v", k, keys)
		}
	}
	if _, ok := keys["reason"]; ok {
		t.Fatalf("empty reason should be omitted")
	}

	var doc resultDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := domain.LedgerEntry{ID: "id-1", RunID: "run-1", RecordedAt: at, Result: result}
	if diff := cmp.Diff(want, doc.entry()); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}
