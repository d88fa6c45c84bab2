package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeeftor/rpa-runner/internal/runner"
	"github.com/jeeftor/rpa-runner/internal/script"
	"github.com/jeeftor/rpa-runner/internal/sheet"
	"github.com/jeeftor/rpa-runner/internal/validation"
)

func TestSampleConfigDecodesToDefaults(t *testing.T) {
	data, err := sampleConfig()
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "# RPA Runner configuration")
	assert.Contains(t, text, "# Global hotkey that stops a run")
	assert.Contains(t, text, "stop_hotkey: ctrl+shift+q")

	var opts validation.RunOptions
	require.NoError(t, yaml.Unmarshal(data, &opts))
	assert.Equal(t, 0.01, opts.Interval)
	assert.Equal(t, "once", opts.Mode)
	assert.Equal(t, "info", opts.LogLevel)

	opts.Script = "jobs.xlsx"
	assert.True(t, validation.ValidateRunOptions(opts).Valid())
}

func TestSummarizeRows(t *testing.T) {
	rows, err := script.Validate(sheet.NewGrid(
		[]any{"Kind", "Value", "Retry"},
		[]any{1, "a.png"},
		[]any{4, "text"},
		[]any{1, "b.png"},
		[]any{7, "1;2"},
	))
	require.NoError(t, err)

	summary := summarizeRows(rows)
	assert.Contains(t, summary, "click")
	assert.Contains(t, summary, "=2")
	assert.Contains(t, summary, "paste")
	assert.Contains(t, summary, "coordinate_click")
	assert.NotContains(t, summary, "scroll")
}

func TestDescribeMode(t *testing.T) {
	assert.Equal(t, "once", describeMode(runSettings{mode: runner.Once}))
	assert.Equal(t, "loop until stopped", describeMode(runSettings{mode: runner.Loop}))
	assert.Equal(t, "loop 3 times", describeMode(runSettings{mode: runner.Loop, loops: 3}))
}
