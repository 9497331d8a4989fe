package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
		want    string
	}{
		{name: "valid", doc: "port: 8443\npoll_interval: 2s\nterminal_status: started\n", want: "is valid"},
		{name: "empty", doc: "", want: "is valid"},
		{name: "bad port", doc: "port: 70000\n", wantErr: true, want: "is not valid"},
		{name: "unknown key", doc: "server: cucm-pub\n", wantErr: true, want: "is not valid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cucm-service.yaml")
			if err := os.WriteFile(path, []byte(tt.doc), 0o644); err != nil {
				t.Fatal(err)
			}
			out, err := execute("validate-config", path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v\n%s", err, out)
			}
			if !strings.Contains(out, tt.want) {
				t.Fatalf("expected %q in output:\n%s", tt.want, out)
			}
		})
	}
}

func TestValidateConfigMissingFile(t *testing.T) {
	_, err := execute("validate-config", filepath.Join(t.TempDir(), "none.yaml"))
	if code := ExitCode(err); code != ExitFailure {
		t.Fatalf("expected exit %d, got %d (%v)", ExitFailure, code, err)
	}
}
