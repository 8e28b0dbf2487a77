package main

import (
	"fmt"
	"os"
	"strings"
)

// handleCompletion prints a shell completion script for bash, zsh, or fish.
func handleCompletion(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: occtl completion <bash|zsh|fish>")
		return 2
	}

	switch strings.ToLower(args[0]) {
	case "bash":
		fmt.Println(bashCompletionScript())
		return 0
	case "zsh":
		fmt.Println(zshCompletionScript())
		return 0
	case "fish":
		fmt.Println(fishCompletionScript())
		return 0
	}

	fmt.Printf("unsupported shell: %s\n", args[0])
	return 2
}

func bashCompletionScript() string {
	template := `# occtl bash completion
_occtl_tmux_sessions() {
  tmux list-sessions -F '#{session_name}' 2>/dev/null
}

_occtl_complete() {
  local cur prev
  COMPREPLY=()
  cur="${COMP_WORDS[COMP_CWORD]}"
  prev="${COMP_WORDS[COMP_CWORD-1]}"

  if [[ $COMP_CWORD -eq 1 ]]; then
    COMPREPLY=( $(compgen -W "{cmds}" -- "$cur") )
    return 0
  fi

  case "$prev" in
    attach|focus|kill)
      COMPREPLY=( $(compgen -W "$(_occtl_tmux_sessions)" -- "$cur") )
      ;;
    watch)
      COMPREPLY+=( $(compgen -W "--name --idle-seconds --capture-lines" -- "$cur") )
      ;;
    --name|--session)
      COMPREPLY=( $(compgen -W "$(_occtl_tmux_sessions)" -- "$cur") )
      ;;
    set-webhook|set-alert-router|set-relay-token)
      return 0
      ;;
    completion)
      COMPREPLY=( $(compgen -W "bash zsh fish" -- "$cur") )
      ;;
  esac
}

complete -F _occtl_complete occtl
`
	return strings.ReplaceAll(template, "{cmds}", strings.Join(commands, " "))
}

func zshCompletionScript() string {
	template := `#compdef occtl

_occtl() {
  local -a commands
  local -a sessions
  commands=(
    __CMD_LIST__
  )
  sessions=(${(f)"$(tmux list-sessions -F '#{session_name}' 2>/dev/null)"})

  if (( CURRENT == 2 )); then
    compadd -a commands
    return
  fi

  case "$words[2]" in
    attach|focus|kill)
      compadd -a sessions
      ;;
    watch)
      if [[ "$words[CURRENT-1]" == "--name" ]]; then
        compadd -a sessions
      else
        compadd -- --name --idle-seconds --capture-lines
      fi
      ;;
    say|enter)
      if [[ "$words[CURRENT-1]" == "--session" ]]; then
        compadd -a sessions
      else
        compadd -- --session
      fi
      ;;
    completion)
      compadd -- bash zsh fish
      ;;
  esac
}

compdef _occtl occtl
`
	return strings.ReplaceAll(template, "__CMD_LIST__", strings.Join(commands, " "))
}

func fishCompletionScript() string {
	template := `# occtl fish completion
function __occtl_tmux_sessions
  tmux list-sessions -F '#{session_name}' 2>/dev/null
end

complete -c occtl -f
complete -c occtl -n '__fish_use_subcommand' -a "{cmds}"
complete -c occtl -n "__fish_seen_subcommand_from attach focus kill" -a "(__occtl_tmux_sessions)"
complete -c occtl -n "__fish_seen_subcommand_from watch" -l name -r -a "(__occtl_tmux_sessions)"
complete -c occtl -n "__fish_seen_subcommand_from watch" -l idle-seconds -r
complete -c occtl -n "__fish_seen_subcommand_from watch" -l capture-lines -r
complete -c occtl -n "__fish_seen_subcommand_from say enter" -l session -r -a "(__occtl_tmux_sessions)"
complete -c occtl -n "__fish_seen_subcommand_from completion" -f -a "bash zsh fish"
`
	return strings.ReplaceAll(template, "{cmds}", strings.Join(commands, " "))
}
