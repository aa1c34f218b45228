package testhelper

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/wrdict/internal/domain"
)

// UniquePair returns a language pair no other test uses, so tests sharing the
// container never see each other's rows.
func UniquePair() (from, to string) {
	suffix := uuid.New().String()[:8]
	return "src" + suffix, "dst" + suffix
}

// SeedLookupResult inserts a cached lookup result with one translation.
func SeedLookupResult(t *testing.T, pool *pgxpool.Pool, from, to, word string, freq int) domain.LookupResult {
	t.Helper()

	res := domain.LookupResult{
		Word:  word,
		Audio: []string{},
		Translations: []domain.TranslationBlock{{
			Title: "Principal Translations",
			Items: []domain.TranslationItem{{From: word, FromType: "n", To: word + "-t", ToType: "n"}},
		}},
		Frequency: &freq,
	}
	payload, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("testhelper: SeedLookupResult marshal: %v", err)
	}

	_, err = pool.Exec(context.Background(),
		`INSERT INTO lookup_results (id, word, source_lang, target_lang, frequency, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), word, from, to, freq, string(payload),
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLookupResult insert: %v", err)
	}

	return res
}
