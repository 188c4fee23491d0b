package common

import (
	"encoding/json"
	"fmt"
	"os"
)

// CIResult is the machine-readable outcome printed when a tool runs with
// --ci, one JSON document per invocation.
type CIResult struct {
	OK      bool     `json:"ok"`
	Title   string   `json:"title"`
	Details []string `json:"details,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func PrintCIResult(ok bool, title string, details []string, err error) {
	result := CIResult{OK: ok, Title: title, Details: details}
	if err != nil {
		result.Error = err.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

func PrintHumanResult(title string, details []string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: failed: %v\n", title, err)
		return
	}
	fmt.Printf("%s: ok\n", title)
	for _, line := range details {
		fmt.Printf("  %s\n", line)
	}
}
