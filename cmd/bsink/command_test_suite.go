//go:build test

package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/srg/bsink/internal/testutils"
	"github.com/stretchr/testify/suite"
)

// CommandTestSuite runs bsink commands in-process.
// All cmd/bsink test suites should embed this.
type CommandTestSuite struct {
	suite.Suite
}

// SetupTest puts every flag back to its default. Cobra keeps flag values
// between executions of the same command tree.
func (s *CommandTestSuite) SetupTest() {
	replaySettle = 0
	replayCalls = false
	eventsRanges = false
	eventsFormat = "table"
	s.Require().NoError(rootCmd.PersistentFlags().Set("log-level", "error"))
	s.Require().NoError(rootCmd.PersistentFlags().Set("config", ""))
}

// ExecuteCommand runs bsink with args, returns stdout, stderr and the error.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// WriteFile creates a file with content in a per-test directory.
func (s *CommandTestSuite) WriteFile(name, content string) string {
	path := filepath.Join(s.T().TempDir(), name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644), "test file MUST be written")
	return path
}

// AssertJSON compares JSON output, ignoring keys the expectation leaves out.
func (s *CommandTestSuite) AssertJSON(actual, expected string) {
	testutils.NewJSONAsserter(s.T()).Assert(actual, expected)
}

// AssertTranscript compares transcripts line by line.
func (s *CommandTestSuite) AssertTranscript(actual, expected string) {
	testutils.NewTextAsserter(s.T()).Assert(actual, expected)
}
