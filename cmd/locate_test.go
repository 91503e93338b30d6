package cmd

import (
	"testing"
)

func TestLocateCommand_Registered(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "locate" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected 'locate' subcommand to be registered")
	}
}

func TestLocateCommand_HasExpectedFlags(t *testing.T) {
	expectedFlags := []string{"zone", "timeout"}
	for _, name := range expectedFlags {
		if locateCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag --%s to exist on locate command", name)
		}
	}
}

func TestVerbCommands_HaveTargetingFlags(t *testing.T) {
	for _, c := range rootCmd.Commands() {
		switch c.Name() {
		case "click", "scroll", "input", "hover", "check":
			for _, flag := range []string{"at", "zone", "timeout", "noise"} {
				if c.Flags().Lookup(flag) == nil {
					t.Errorf("expected flag --%s on %s command", flag, c.Name())
				}
			}
		}
	}
}
