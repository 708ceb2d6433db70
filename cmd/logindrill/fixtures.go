package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gignut/logindrill/internal/login"
)

// fixtureFile is the on-disk shape of a classifier fixture set.
type fixtureFile struct {
	Cases []fixtureCase `yaml:"cases"`
}

// fixtureCase replays one canned response through the classifier. The
// expectation fields are optional; a case without them just prints its
// verdict.
type fixtureCase struct {
	Name           string `yaml:"name"`
	Status         int    `yaml:"status"`
	Body           string `yaml:"body"`
	Email          string `yaml:"email"`
	ExpectOK       *bool  `yaml:"expect_ok"`
	ExpectContains string `yaml:"expect_contains"`
}

// check compares the classified outcome against the case's expectations
// and describes the first mismatch, or returns "" when the case holds.
func (c fixtureCase) check(outcome login.Outcome) string {
	if c.ExpectOK != nil && outcome.OK != *c.ExpectOK {
		if *c.ExpectOK {
			return "expected success"
		}
		return "expected failure"
	}
	if c.ExpectContains != "" && !strings.Contains(outcome.Reason, c.ExpectContains) {
		return fmt.Sprintf("expected reason containing %q", c.ExpectContains)
	}
	return ""
}

// runFixtures classifies every canned envelope in path and prints one line
// per case. Any case whose expectations do not hold turns the run into an
// error, so the exit code doubles as the check result.
func runFixtures(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse fixtures: %w", err)
	}
	if len(file.Cases) == 0 {
		return fmt.Errorf("no cases in %s", path)
	}

	mismatches := 0
	for i, c := range file.Cases {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("case %d", i+1)
		}
		outcome := login.Classify(login.Envelope{StatusCode: c.Status, Body: []byte(c.Body)}, c.Email)

		if problem := c.check(outcome); problem != "" {
			fmt.Fprintf(w, "FAIL %s: %s (%s)\n", name, outcome, problem)
			mismatches++
			continue
		}
		fmt.Fprintf(w, "ok   %s: %s\n", name, outcome)
	}

	if mismatches > 0 {
		return fmt.Errorf("%d of %d fixture cases mismatched", mismatches, len(file.Cases))
	}
	return nil
}
