package main

import (
	"fmt"
	"io"
	"lox-lang/internal/config"
	"lox-lang/internal/lexer"
	"lox-lang/internal/runtime"
	"lox-lang/internal/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// ---- repl command ----

// session holds REPL state that survives between inputs: one interpreter
// (globals and depth map) and any unfinished multi-line input.
type session struct {
	interp      *runtime.Interpreter
	rep         *reporter
	accumulated strings.Builder
	braceDepth  int
}

func newSession(out, errOut io.Writer, cfg *config.Config) *session {
	return &session{
		interp: runtime.NewInterpreter(out),
		rep:    newReporter(errOut, cfg, cfg.ColorEnabled()),
	}
}

// feed adds one line of input. Once braces balance, the buffered input is
// executed; errors are reported and never end the session.
func (s *session) feed(line string) {
	s.accumulated.WriteString(line)
	s.accumulated.WriteString("\n")
	s.braceDepth = braceDepth(s.accumulated.String())

	// If braces are unbalanced, keep reading
	if s.braceDepth > 0 {
		return
	}
	s.braceDepth = 0

	source := s.accumulated.String()
	s.accumulated.Reset()
	if strings.TrimSpace(source) == "" {
		return
	}
	execute(s.interp, source, s.rep)
}

// braceDepth counts open minus close brace tokens, so braces inside string
// literals and comments are ignored.
func braceDepth(source string) int {
	tokens, _ := lexer.New(source).Tokenize()
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LEFT_BRACE:
			depth++
		case token.RIGHT_BRACE:
			depth--
		}
	}
	return depth
}

// cancel drops unfinished multi-line input. It reports whether there was any.
func (s *session) cancel() bool {
	pending := s.braceDepth > 0
	s.accumulated.Reset()
	s.braceDepth = 0
	return pending
}

func (s *session) continuing() bool {
	return s.braceDepth > 0
}

func cmdRepl(cfg *config.Config) int {
	historyFile := cfg.REPL.HistoryFile
	if historyFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, ".lox_history")
		}
	}

	paint := func(color, text string) string {
		if !cfg.ColorEnabled() {
			return text
		}
		return color + text + colorReset
	}
	prompt := paint(colorGreen, cfg.REPL.Prompt)
	continuation := paint(colorGray, cfg.REPL.ContinuationPrompt)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		return exitIO
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s %s\n\n",
		paint(colorBold+colorCyan, "Lox REPL"), paint(colorGray, "(type 'exit' or Ctrl+D to quit)"))

	s := newSession(rl.Stdout(), rl.Stderr(), cfg)
	for {
		if s.continuing() {
			rl.SetPrompt(continuation)
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if s.cancel() {
					continue
				}
				// Show hint instead of exiting
				fmt.Fprintf(rl.Stdout(), "%s\n", paint(colorGray, "(use 'exit' or Ctrl+D to quit)"))
				continue
			}
			// EOF (Ctrl+D) or other error → exit
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if !s.continuing() && strings.TrimSpace(line) == "exit" {
			break
		}
		s.feed(line)
	}
	return exitOK
}
