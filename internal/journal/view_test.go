package journal

import (
	"testing"

	"plant-journal-be/internal/entity"
)

func disc(name string, category entity.Category, capturedAt int64) *entity.Discovery {
	return &entity.Discovery{Name: name, Category: category, CapturedAt: capturedAt}
}

func names(records []*entity.Discovery) []string {
	out := make([]string, 0, len(records))
	for _, d := range records {
		out = append(out, d.Name)
	}
	return out
}

func equalNames(got []*entity.Discovery, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i, d := range got {
		if d.Name != want[i] {
			return false
		}
	}
	return true
}

func TestProject(t *testing.T) {
	records := []*entity.Discovery{
		disc("Rose", entity.CategoryFlower, 100),
		disc("apple", entity.CategoryTree, 300),
		disc("Tulip", entity.CategoryFlower, 200),
		disc("Ladybird", entity.CategoryInsect, 400),
	}

	tests := []struct {
		name     string
		query    string
		category entity.Category
		sortOpt  SortOption
		want     []string
	}{
		{
			name:     "default is date descending",
			category: entity.CategoryAll,
			sortOpt:  SortDateDesc,
			want:     []string{"Ladybird", "apple", "Tulip", "Rose"},
		},
		{
			name:     "date ascending",
			category: entity.CategoryAll,
			sortOpt:  SortDateAsc,
			want:     []string{"Rose", "Tulip", "apple", "Ladybird"},
		},
		{
			name:     "name ascending is case-insensitive",
			category: entity.CategoryAll,
			sortOpt:  SortNameAsc,
			want:     []string{"apple", "Ladybird", "Rose", "Tulip"},
		},
		{
			name:     "name descending",
			category: entity.CategoryAll,
			sortOpt:  SortNameDesc,
			want:     []string{"Tulip", "Rose", "Ladybird", "apple"},
		},
		{
			name:     "query matches name case-insensitively",
			query:    "ROSE",
			category: entity.CategoryAll,
			sortOpt:  SortDateDesc,
			want:     []string{"Rose"},
		},
		{
			name:     "query matches category text",
			query:    "flower",
			category: entity.CategoryAll,
			sortOpt:  SortDateDesc,
			want:     []string{"Tulip", "Rose"},
		},
		{
			name:     "category filter",
			category: entity.CategoryFlower,
			sortOpt:  SortNameAsc,
			want:     []string{"Rose", "Tulip"},
		},
		{
			name:     "query and category compose",
			query:    "tulip",
			category: entity.CategoryFlower,
			sortOpt:  SortDateDesc,
			want:     []string{"Tulip"},
		},
		{
			name:     "query and category can exclude everything",
			query:    "rose",
			category: entity.CategoryInsect,
			sortOpt:  SortDateDesc,
			want:     []string{},
		},
		{
			name:     "empty category behaves like All",
			category: "",
			sortOpt:  SortDateAsc,
			want:     []string{"Rose", "Tulip", "apple", "Ladybird"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(records, tt.query, tt.category, tt.sortOpt)
			if !equalNames(got, tt.want) {
				t.Errorf("Project() = %v, want %v", names(got), tt.want)
			}
		})
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	records := []*entity.Discovery{
		disc("Rose", entity.CategoryFlower, 100),
		disc("Oak", entity.CategoryTree, 300),
	}

	first := Project(records, "", entity.CategoryAll, SortNameAsc)
	second := Project(records, "", entity.CategoryAll, SortNameAsc)

	if !equalNames(second, names(first)) {
		t.Errorf("repeated projection diverged: %v vs %v", names(first), names(second))
	}
	// Input order untouched.
	if records[0].Name != "Rose" || records[1].Name != "Oak" {
		t.Error("Project mutated its input slice")
	}
}

func TestParseSortOption(t *testing.T) {
	tests := []struct {
		in   string
		want SortOption
	}{
		{"date_desc", SortDateDesc},
		{"date_asc", SortDateAsc},
		{"NAME_ASC", SortNameAsc},
		{" name_desc ", SortNameDesc},
		{"", SortDateDesc},
		{"bogus", SortDateDesc},
	}
	for _, tt := range tests {
		if got := ParseSortOption(tt.in); got != tt.want {
			t.Errorf("ParseSortOption(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestViewEmitsLatestProjection(t *testing.T) {
	v := NewView()

	v.SetRecords([]*entity.Discovery{
		disc("Rose", entity.CategoryFlower, 100),
		disc("Oak", entity.CategoryTree, 300),
	})

	got := <-v.Updates()
	if !equalNames(got, []string{"Oak", "Rose"}) {
		t.Fatalf("initial projection = %v", names(got))
	}

	v.SetSort(SortNameAsc)
	got = <-v.Updates()
	if !equalNames(got, []string{"Oak", "Rose"}) {
		t.Fatalf("after sort change = %v", names(got))
	}

	v.SetQuery("rose")
	got = <-v.Updates()
	if !equalNames(got, []string{"Rose"}) {
		t.Fatalf("after query change = %v", names(got))
	}
}

func TestViewDropsStalePendingProjection(t *testing.T) {
	v := NewView()

	// Two changes without a consumer read in between: only the latest
	// projection must be observable.
	v.SetRecords([]*entity.Discovery{disc("Rose", entity.CategoryFlower, 100)})
	v.SetQuery("no-such-name")

	got := <-v.Updates()
	if len(got) != 0 {
		t.Errorf("expected latest (empty) projection, got %v", names(got))
	}

	select {
	case stale := <-v.Updates():
		t.Errorf("unexpected second pending projection: %v", names(stale))
	default:
	}
}

func TestViewSetInputsAppliesAtomically(t *testing.T) {
	v := NewView()
	v.SetRecords([]*entity.Discovery{
		disc("Rose", entity.CategoryFlower, 100),
		disc("Tulip", entity.CategoryFlower, 200),
		disc("Oak", entity.CategoryTree, 300),
	})

	v.SetInputs("", entity.CategoryFlower, SortNameDesc)

	got := <-v.Updates()
	if !equalNames(got, []string{"Tulip", "Rose"}) {
		t.Errorf("projection = %v, want [Tulip Rose]", names(got))
	}
}
