// Package cli implements chlite's interactive REPL: a line-buffering shell
// that accumulates input until a complete, semicolon-terminated statement
// is seen, plus the REPL loop that feeds each one to an engine.Engine.
package cli

import (
	"bufio"
	"io"
	"strings"
)

// Shell buffers interactive input into complete SQL statements, tracking
// a bounded command history for recall.
type Shell struct {
	reader *bufio.Reader

	output    io.Writer
	errOutput io.Writer

	prompt         string
	continuePrompt string

	history      []string
	historyIndex int
	maxHistory   int
}

// NewShell creates a shell reading from input and writing prompts/output
// to output. If errOutput is nil, errors share output's stream.
func NewShell(input io.Reader, output, errOutput io.Writer) *Shell {
	var reader *bufio.Reader
	if input != nil {
		reader = bufio.NewReader(input)
	}
	if errOutput == nil {
		errOutput = output
	}
	return &Shell{
		reader:         reader,
		output:         output,
		errOutput:      errOutput,
		prompt:         "chlite> ",
		continuePrompt: "     -> ",
		maxHistory:     1000,
	}
}

func (s *Shell) SetPrompt(prompt string)         { s.prompt = prompt }
func (s *Shell) SetContinuePrompt(prompt string) { s.continuePrompt = prompt }

// ReadLine reads one line, stripping trailing whitespace, and reports
// whether EOF was reached.
func (s *Shell) ReadLine() (string, bool) {
	if s.reader == nil {
		return "", true
	}
	line, err := s.reader.ReadString('\n')
	line = strings.TrimRight(line, " \t\r\n")
	if err != nil {
		return line, true
	}
	return line, false
}

// ReadStatement reads lines until IsComplete reports a finished statement
// (or EOF), showing the continuation prompt on every line after the
// first. A first line starting with "." is a dot-command and is returned
// on its own without waiting for a semicolon. The completed statement is
// recorded in history.
func (s *Shell) ReadStatement() (string, bool) {
	var lines []string
	first := true
	for {
		if s.output != nil {
			if first {
				io.WriteString(s.output, s.prompt)
			} else {
				io.WriteString(s.output, s.continuePrompt)
			}
		}
		first = false

		line, eof := s.ReadLine()
		if eof && line == "" && len(lines) == 0 {
			return "", true
		}
		if len(lines) == 0 && strings.HasPrefix(strings.TrimSpace(line), ".") {
			s.AddHistory(strings.TrimSpace(line))
			return line, eof
		}
		lines = append(lines, line)
		combined := strings.Join(lines, "\n")

		if s.IsComplete(combined) {
			if trimmed := strings.TrimSpace(combined); trimmed != "" {
				s.AddHistory(trimmed)
			}
			return combined, false
		}
		if eof {
			return combined, true
		}
	}
}

// IsComplete reports whether sql ends with a semicolon that is outside
// any string literal or line comment.
func (s *Shell) IsComplete(sql string) bool {
	if sql == "" {
		return false
	}
	inSingle, inDouble, inComment := false, false, false
	lastSemi := -1

	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\n':
			inComment = false
		case inComment:
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			inComment = true
			i++
		case r == '\'' && !inDouble:
			if inSingle && i+1 < len(runes) && runes[i+1] == '\'' {
				i++
				continue
			}
			inSingle = !inSingle
		case r == '"' && !inSingle:
			if inDouble && i+1 < len(runes) && runes[i+1] == '"' {
				i++
				continue
			}
			inDouble = !inDouble
		case r == ';' && !inSingle && !inDouble:
			lastSemi = i
		}
	}
	return !inSingle && !inDouble && lastSemi >= 0
}

// AddHistory records stmt, skipping immediate duplicates and trimming to
// maxHistory entries.
func (s *Shell) AddHistory(stmt string) {
	if len(s.history) > 0 && s.history[len(s.history)-1] == stmt {
		return
	}
	s.history = append(s.history, stmt)
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
	s.historyIndex = len(s.history)
}

// History returns a copy of the recorded statement history.
func (s *Shell) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// ClearHistory discards all recorded history.
func (s *Shell) ClearHistory() {
	s.history = nil
	s.historyIndex = 0
}
