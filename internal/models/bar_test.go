package models

import "testing"

func TestSeriesAt(t *testing.T) {
	s := Series{{Close: 1}, {Close: 2}, {Close: 3}}

	tests := []struct {
		name  string
		index int
		want  float64
		ok    bool
	}{
		{name: "first", index: 0, want: 1, ok: true},
		{name: "last by negative", index: -1, want: 3, ok: true},
		{name: "first by negative", index: -3, want: 1, ok: true},
		{name: "past the end", index: 3, ok: false},
		{name: "before the start", index: -4, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar, ok := s.At(tt.index)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && bar.Close != tt.want {
				t.Errorf("close = %v, want %v", bar.Close, tt.want)
			}
		})
	}

	if _, ok := (Series{}).At(0); ok {
		t.Error("empty series resolved an index")
	}
}
