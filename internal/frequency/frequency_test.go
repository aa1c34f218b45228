package frequency

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/heartmarshall/wrdict/internal/domain"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []domain.FrequencyItem
	}{
		{
			name:  "explicit ranks",
			input: "the 100\nquick 50",
			want:  []domain.FrequencyItem{{Word: "the", Frequency: 100}, {Word: "quick", Frequency: 50}},
		},
		{
			name:  "positional ranks",
			input: "de\nla\nque\n",
			want:  []domain.FrequencyItem{{Word: "de", Frequency: 3}, {Word: "la", Frequency: 2}, {Word: "que", Frequency: 1}},
		},
		{
			name:  "blank lines skipped",
			input: "\nuno 7\n\n   \ndos\n",
			want:  []domain.FrequencyItem{{Word: "uno", Frequency: 7}, {Word: "dos", Frequency: 1}},
		},
		{
			name:  "non-positive rank falls back",
			input: "a 0\nb -4\nc x",
			want:  []domain.FrequencyItem{{Word: "a", Frequency: 3}, {Word: "b", Frequency: 2}, {Word: "c", Frequency: 1}},
		},
		{
			name:  "crlf",
			input: "hola 12\r\nadiós 3\r\n",
			want:  []domain.FrequencyItem{{Word: "hola", Frequency: 12}, {Word: "adiós", Frequency: 3}},
		},
		{
			name:  "empty",
			input: "",
			want:  []domain.FrequencyItem{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromWords(t *testing.T) {
	t.Parallel()

	got := FromWords([]string{"casa", " ", "perro "})
	want := []domain.FrequencyItem{{Word: "casa", Frequency: 2}, {Word: "perro", Frequency: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromWords() = %+v, want %+v", got, want)
	}
}

func TestSlice(t *testing.T) {
	t.Parallel()

	items := FromWords([]string{"a", "b", "c", "d"})
	words := func(in []domain.FrequencyItem) string {
		var ws []string
		for _, it := range in {
			ws = append(ws, it.Word)
		}
		return strings.Join(ws, ",")
	}

	tests := []struct {
		offset, n int
		want      string
	}{
		{0, 0, "a,b,c,d"},
		{1, 2, "b,c"},
		{2, 10, "c,d"},
		{4, 1, ""},
		{-1, 1, "a"},
	}
	for _, tt := range tests {
		if got := words(Slice(items, tt.offset, tt.n)); got != tt.want {
			t.Errorf("Slice(offset=%d, n=%d) = %q, want %q", tt.offset, tt.n, got, tt.want)
		}
	}
}

func TestLoad_LocalFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "es.txt")
	if err := os.WriteFile(path, []byte("de 9\nla 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(context.Background(), nil, "es", path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].Word != "de" || got[0].Frequency != 9 {
		t.Errorf("Load() = %+v", got)
	}
}

func TestLoad_LocalFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := Load(context.Background(), nil, "es", "/nonexistent/es.txt"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_Remote(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/es_full.txt" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "que 500\nde 400\n")
	}))
	defer srv.Close()

	got, err := Load(context.Background(), srv.Client(), "es", srv.URL+"/es_full.txt")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []domain.FrequencyItem{{Word: "que", Frequency: 500}, {Word: "de", Frequency: 400}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	if _, err := Load(context.Background(), srv.Client(), "es", srv.URL+"/missing.txt"); err == nil {
		t.Error("expected error for 404 source")
	}
}

func TestDefaultSourceURL(t *testing.T) {
	t.Parallel()

	want := "https://raw.githubusercontent.com/hermitdave/FrequencyWords/master/content/2018/es/es_full.txt"
	if got := DefaultSourceURL("es"); got != want {
		t.Errorf("DefaultSourceURL(es) = %q, want %q", got, want)
	}
}
