package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicbook/internal/testutil"
	"topicbook/pkg/topicbook"
)

func TestGenerateStreamsLogUntilSentinel(t *testing.T) {
	server := testutil.NewScriptedServer(t, []topicbook.TaskID{"abc123"}, map[topicbook.TaskID]testutil.ScriptedTask{
		"abc123": {
			Lines: []string{"🚀 Starting", "--- Generated Personalized Structure ---", "-> Writing chapter 1: Intro"},
			Done:  true,
		},
	})

	res := runCLI(t, "generate", "--base-url", server.URL, "--ui", "plain", "--no-color",
		"--description", "for backend engineers", "Go", "Concurrency")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "🚀 Starting\n--- Generated Personalized Structure ---\n-> Writing chapter 1: Intro\n", res.stdout)
	assert.NotContains(t, res.stdout, topicbook.Sentinel)
	assert.Contains(t, res.stderr, "task abc123 completed")
	assert.Equal(t, []topicbook.TaskRequest{{Topic: "Go Concurrency", Description: "for backend engineers"}}, server.Requests())
}

func TestGenerateSubmissionFailure(t *testing.T) {
	server := testutil.NewScriptedServer(t, nil, nil)

	res := runCLI(t, "generate", "--base-url", server.URL, "--ui", "plain", "--no-color", "--topic", "Rust")

	assert.Equal(t, ExitError, res.code)
	assert.Equal(t, topicbook.SubmissionFailedText+"\n", res.stdout)
	assert.Contains(t, res.stderr, "error: submit task")
}

func TestGenerateStreamClosedBeforeSentinel(t *testing.T) {
	server := testutil.NewScriptedServer(t, []topicbook.TaskID{"t1"}, map[topicbook.TaskID]testutil.ScriptedTask{
		"t1": {Lines: []string{"a", "b"}},
	})

	res := runCLI(t, "generate", "--base-url", server.URL, "--ui", "plain", "--no-color", "Physics")

	assert.Equal(t, ExitError, res.code)
	assert.Equal(t, "a\nb\n", res.stdout)
	assert.NotContains(t, res.stderr, "completed")
}

func TestGenerateRejectsMissingTopic(t *testing.T) {
	server := testutil.NewScriptedServer(t, []topicbook.TaskID{"t1"}, nil)

	res := runCLI(t, "generate", "--base-url", server.URL, "--topic", "   ")

	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "topic is required")
	assert.Empty(t, server.Requests())
}

func TestGenerateRejectsTopicFlagAndArgs(t *testing.T) {
	res := runCLI(t, "generate", "--topic", "Go", "extra")

	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "not both")
}

func TestGenerateInvalidUIModeIsConfigError(t *testing.T) {
	res := runCLI(t, "generate", "--ui", "fancy", "Go")

	assert.Equal(t, ExitError, res.code)
	assert.True(t, strings.HasPrefix(res.stderr, "Invalid configuration:"), res.stderr)
	assert.Contains(t, res.stderr, "ui must be one of auto, live, plain")
}

func TestWatchAttachesWithoutSubmitting(t *testing.T) {
	server := testutil.NewScriptedServer(t, nil, map[topicbook.TaskID]testutil.ScriptedTask{
		"existing": {Lines: []string{"one", "two"}, Done: true},
	})

	res := runCLI(t, "watch", "--base-url", server.URL, "--ui", "plain", "--no-color", "existing")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "one\ntwo\n", res.stdout)
	assert.Empty(t, server.Requests())
}

func TestWatchUnknownTaskFails(t *testing.T) {
	server := testutil.NewScriptedServer(t, nil, nil)

	res := runCLI(t, "watch", "--base-url", server.URL, "--ui", "plain", "--no-color", "missing")

	assert.Equal(t, ExitError, res.code)
	assert.Empty(t, res.stdout)
}

func TestWatchRequiresTaskID(t *testing.T) {
	res := runCLI(t, "watch")

	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "exactly one task id")
}
