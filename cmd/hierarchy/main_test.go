package main

import (
	"reflect"
	"testing"
)

func TestRewriteNodeLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"hierarchy"},
			want: []string{"hierarchy"},
		},
		{
			name: "node id first token",
			in:   []string{"hierarchy", "node-abc123"},
			want: []string{"hierarchy", "nodes", "show", "node-abc123"},
		},
		{
			name: "node id after value flag",
			in:   []string{"hierarchy", "--dir", "./ws", "node-abc123"},
			want: []string{"hierarchy", "--dir", "./ws", "nodes", "show", "node-abc123"},
		},
		{
			name: "node id after equals flag",
			in:   []string{"hierarchy", "--format=yaml", "node-abc123"},
			want: []string{"hierarchy", "--format=yaml", "nodes", "show", "node-abc123"},
		},
		{
			name: "node id after bool flag",
			in:   []string{"hierarchy", "--pretty", "node-abc123"},
			want: []string{"hierarchy", "--pretty", "nodes", "show", "node-abc123"},
		},
		{
			name: "node id after double dash",
			in:   []string{"hierarchy", "--", "node-abc123"},
			want: []string{"hierarchy", "--", "nodes", "show", "node-abc123"},
		},
		{
			name: "value flag that looks like a node id",
			in:   []string{"hierarchy", "--workspace", "node-ws", "status"},
			want: []string{"hierarchy", "--workspace", "node-ws", "status"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"hierarchy", "nodes", "show", "node-abc123"},
			want: []string{"hierarchy", "nodes", "show", "node-abc123"},
		},
		{
			name: "bare prefix not rewritten",
			in:   []string{"hierarchy", "node-"},
			want: []string{"hierarchy", "node-"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := rewriteNodeLookupArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteNodeLookupArgs(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
