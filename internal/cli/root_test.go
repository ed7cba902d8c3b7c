package cli

import (
	"bytes"
	"testing"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "honeylog" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	if cmd.PersistentFlags().Lookup("log-level") == nil {
		t.Error("Missing flag: log-level")
	}

	for _, name := range []string{"analyze", "detect", "validate", "version"} {
		found, _, err := cmd.Find([]string{name})
		if err != nil || found.Name() != name {
			t.Errorf("Missing subcommand %q (err = %v)", name, err)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	cmd := NewRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "debug", "version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !bytes.HasPrefix(stdout.Bytes(), []byte("honeylog ")) {
		t.Errorf("output = %q", stdout.String())
	}
}
