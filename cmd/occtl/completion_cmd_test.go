package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBashCompletionContainsCommands(t *testing.T) {
	script := bashCompletionScript()
	assert.Contains(t, script, "_occtl_complete")
	assert.Contains(t, script, "complete -F _occtl_complete occtl")
	assert.Contains(t, script, strings.Join(commands, " "))
}

func TestZshCompletionContainsCompdef(t *testing.T) {
	script := zshCompletionScript()
	assert.Contains(t, script, "#compdef occtl")
	assert.Contains(t, script, "compdef _occtl occtl")
	assert.Contains(t, script, strings.Join(commands, " "))
}

func TestFishCompletionContainsCommand(t *testing.T) {
	script := fishCompletionScript()
	assert.Contains(t, script, "complete -c occtl -f")
	assert.Contains(t, script, strings.Join(commands, " "))
}
