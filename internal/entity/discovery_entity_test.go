package entity

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"plant", CategoryPlant},
		{"Flower", CategoryFlower},
		{" TREE ", CategoryTree},
		{"insect", CategoryInsect},
		{"other", CategoryOther},
		{"", CategoryPlant},
		{"mushroom", CategoryPlant},
	}

	for _, tt := range tests {
		if got := ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
