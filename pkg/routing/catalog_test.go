package routing

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func TestPreprocessCategories(t *testing.T) {
	tests := []struct {
		name   string
		models []string
		want   Family
	}{
		{
			name:   "gemini models",
			models: []string{"Gemini 2.5 Pro", "GPT-4o"},
			want:   FamilyGemini,
		},
		{
			name:   "google branding maps to gemini",
			models: []string{"Google PaLM"},
			want:   FamilyGemini,
		},
		{
			name:   "openai reasoning model",
			models: []string{"o3", "Claude Opus 4"},
			want:   FamilyGPT,
		},
		{
			name:   "claude first",
			models: []string{"Claude Opus 4", "GPT-4o"},
			want:   FamilyClaude,
		},
		{
			name:   "llama maps to groq",
			models: []string{"Llama 3.3 70B"},
			want:   FamilyGroq,
		},
		{
			name:   "unmatched models default to gemini",
			models: []string{"Mistral Large", "Command R+"},
			want:   catalogUnmappedFamily,
		},
		{
			name:   "empty model list defaults to gemini",
			models: nil,
			want:   catalogUnmappedFamily,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			families := preprocessCategories(map[string][]string{"cat": tt.models})
			if families["cat"] != tt.want {
				t.Errorf("preprocessCategories(%v) = %v, want %v", tt.models, families["cat"], tt.want)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leaderboard.json")
	snapshot := `{
		"task_categories": {
			"Best in Coding": ["Claude Opus 4", "o3"],
			"Best in Speed": ["Llama 3.3 70B (Groq)"],
			"Best in General Knowledge": ["GPT-4o"]
		}
	}`
	if err := os.WriteFile(path, []byte(snapshot), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog := LoadCatalog(path, testLogger())
	if catalog.Len() != 3 {
		t.Fatalf("catalog.Len() = %d, want 3", catalog.Len())
	}

	if family, _ := catalog.FamilyFor("Best in Coding"); family != FamilyClaude {
		t.Errorf("Best in Coding = %v, want claude", family)
	}
	if family, _ := catalog.FamilyFor("Best in Speed"); family != FamilyGroq {
		t.Errorf("Best in Speed = %v, want groq", family)
	}
	if _, ok := catalog.FamilyFor("Unknown Category"); ok {
		t.Error("FamilyFor should report missing categories")
	}

	labels := catalog.Labels()
	if !sort.StringsAreSorted(labels) {
		t.Errorf("labels should be sorted for stable tie-breaks, got %v", labels)
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	catalog := LoadCatalog("/nonexistent/leaderboard.json", testLogger())
	if catalog.Len() != 0 {
		t.Errorf("missing snapshot should yield an empty catalog, got %d entries", catalog.Len())
	}
}

func TestLoadCatalogMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog := LoadCatalog(path, testLogger())
	if catalog.Len() != 0 {
		t.Errorf("malformed snapshot should yield an empty catalog, got %d entries", catalog.Len())
	}
}
