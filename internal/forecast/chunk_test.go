package forecast

import "testing"

func TestChunk(t *testing.T) {
	samples := threeHourly(20)
	tests := []struct {
		name     string
		size     int
		limit    int
		wantLens []int
	}{
		{"full days with remainder", 8, 0, []int{8, 8, 4}},
		{"limited", 8, 2, []int{8, 8}},
		{"default size", 0, 0, []int{8, 8, 4}},
		{"small groups", 5, 3, []int{5, 5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(samples, tt.size, tt.limit)
			if len(got) != len(tt.wantLens) {
				t.Fatalf("Chunk() groups = %d, want %d", len(got), len(tt.wantLens))
			}
			for i, g := range got {
				if len(g) != tt.wantLens[i] {
					t.Errorf("Chunk()[%d] len = %d, want %d", i, len(g), tt.wantLens[i])
				}
			}
		})
	}
}

func TestWindow(t *testing.T) {
	samples := threeHourly(10)
	tests := []struct {
		name     string
		from, to int
		want     int
	}{
		{"inside", 2, 5, 3},
		{"clamped end", 8, 16, 2},
		{"past end", 12, 20, 0},
		{"negative start", -3, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Window(samples, tt.from, tt.to); len(got) != tt.want {
				t.Errorf("Window(%d, %d) len = %d, want %d", tt.from, tt.to, len(got), tt.want)
			}
		})
	}
}
