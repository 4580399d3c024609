package exporter

import "testing"

func TestParseSelection(t *testing.T) {
	tests := []struct {
		expr    string
		in      []int
		out     []int
		wantErr bool
	}{
		{expr: "3", in: []int{3}, out: []int{1, 2, 4}},
		{expr: "3-7", in: []int{3, 5, 7}, out: []int{2, 8}},
		{expr: "1,4-9", in: []int{1, 4, 9}, out: []int{2, 3, 10}},
		{expr: " 2 , 5 - 6 ", in: []int{2, 5, 6}, out: []int{1, 4, 7}},
		{expr: "4-4", in: []int{4}, out: []int{3, 5}},
		{expr: "", wantErr: true},
		{expr: "abc", wantErr: true},
		{expr: "9-4", wantErr: true},
		{expr: "0", wantErr: true},
		{expr: "1-", wantErr: true},
		{expr: "1,,2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			sel, err := ParseSelection(tt.expr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("no error for %q", tt.expr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tt.expr, err)
			}
			for _, n := range tt.in {
				if !sel.Contains(n) {
					t.Errorf("%q should contain %d", tt.expr, n)
				}
			}
			for _, n := range tt.out {
				if sel.Contains(n) {
					t.Errorf("%q should not contain %d", tt.expr, n)
				}
			}
		})
	}
}
