package cmd

import (
	"testing"

	"github.com/rockerboo/ae-score/internal/registry"
)

func TestScoreFlagDefaults(t *testing.T) {
	tests := []struct {
		flag string
		want string
	}{
		{"save_csv", "false"},
		{"csv_file", ""},
		{"store_full_path", "false"},
		{"batch_size", "5"},
		{"model", registry.DefaultModel},
		{"clip_model", registry.DefaultClipModel},
		{"quiet", "false"}, // progress shown by default
		{"precision", "float"},
		{"device", ""},
		{"store", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := scoreCmd.Flags().Lookup(tt.flag)
			if f == nil {
				t.Fatalf("flag --%s is not registered", tt.flag)
			}
			if f.DefValue != tt.want {
				t.Errorf("flag --%s default = %q, want %q", tt.flag, f.DefValue, tt.want)
			}
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"score":    false,
		"metadata": false,
		"models":   false,
		"history":  false,
		"similar":  false,
		"reset":    false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q is not registered on the root command", name)
		}
	}
}
