// Command lox is the CLI entry point for the Lox interpreter.
//
// Usage:
//
//	lox                           Start interactive REPL
//	lox <file>                    Run a source file
//	lox run     <file>            Run a source file
//	lox repl                      Start interactive REPL
//	lox tokens  <file> [--json]   Print tokens
//	lox parse   <file> [--yaml]   Print AST as JSON (or YAML)
//	lox resolve <file>            Print resolved scope distances
package main

import (
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/config"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/resolver"
	"lox-lang/internal/runtime"
	"os"
)

// Process exit codes.
const (
	exitOK      = 0
	exitUsage   = 64
	exitStatic  = 65
	exitRuntime = 70
	exitIO      = 74
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		cfg = config.Default()
	}
	os.Exit(dispatch(os.Args[1:], cfg))
}

func dispatch(args []string, cfg *config.Config) int {
	if len(args) == 0 {
		return cmdRepl(cfg)
	}

	command := args[0]
	switch command {
	case "repl":
		return cmdRepl(cfg)
	case "run", "tokens", "parse", "resolve":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			usage()
			return exitUsage
		}
	case "help", "-h", "--help":
		usage()
		return exitOK
	default:
		if len(args) == 1 {
			return cmdRun(args[0], cfg)
		}
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", command)
		usage()
		return exitUsage
	}

	filename := args[1]
	flags := args[2:]
	switch command {
	case "tokens":
		return cmdTokens(filename, hasFlag(flags, "--json"), cfg)
	case "parse":
		return cmdParse(filename, hasFlag(flags, "--yaml"))
	case "resolve":
		return cmdResolve(filename, cfg)
	default:
		return cmdRun(filename, cfg)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lox                            Start interactive REPL")
	fmt.Fprintln(os.Stderr, "  lox [run] <file>               Run a source file")
	fmt.Fprintln(os.Stderr, "  lox repl                       Start interactive REPL")
	fmt.Fprintln(os.Stderr, "  lox tokens  <file> [--json]    Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  lox parse   <file> [--yaml]    Parse and print AST (JSON by default)")
	fmt.Fprintln(os.Stderr, "  lox resolve <file>             Print resolved scope distances")
}

func readFile(filename string) (string, bool) {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		return "", false
	}
	return string(source), true
}

func hasFlag(flags []string, flag string) bool {
	for _, arg := range flags {
		if arg == flag {
			return true
		}
	}
	return false
}

// frontEnd lexes and parses source. Diagnostics from both phases are
// returned together so one run reports every syntax problem.
func frontEnd(source string) ([]ast.Stmt, []diag.Diagnostic) {
	tokens, lexDiags := lexer.New(source).Tokenize()
	stmts, parseDiags := parser.New(tokens).Parse()
	return stmts, append(lexDiags, parseDiags...)
}

// execute runs source on interp and returns the exit code for the outcome.
// The interpreter keeps its globals, so the REPL calls this once per input.
func execute(interp *runtime.Interpreter, source string, rep *reporter) int {
	stmts, diags := frontEnd(source)
	if len(diags) > 0 {
		rep.diagnostics(diags)
		return exitStatic
	}

	diags, err := interp.Run(stmts)
	rep.diagnostics(diags)
	if diag.HasErrors(diags) {
		return exitStatic
	}
	if err != nil {
		rep.runtimeError(err)
		return exitRuntime
	}
	return exitOK
}

// ---- run command ----

func cmdRun(filename string, cfg *config.Config) int {
	source, ok := readFile(filename)
	if !ok {
		return exitIO
	}
	interp := runtime.NewInterpreter(os.Stdout)
	return execute(interp, source, newReporter(os.Stderr, cfg, false))
}

// ---- tokens command ----

func cmdTokens(filename string, jsonMode bool, cfg *config.Config) int {
	source, ok := readFile(filename)
	if !ok {
		return exitIO
	}
	tokens, diags := lexer.New(source).Tokenize()

	if jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens)
		newReporter(os.Stderr, cfg, false).diagnostics(diags)
	}

	if len(diags) > 0 {
		return exitStatic
	}
	return exitOK
}

// ---- parse command ----

func cmdParse(filename string, yamlMode bool) int {
	source, ok := readFile(filename)
	if !ok {
		return exitIO
	}
	stmts, diags := frontEnd(source)

	output := map[string]interface{}{
		"ast":         ast.StmtSlice(stmts),
		"diagnostics": diagsToSlice(diags),
	}
	if yamlMode {
		printYAML(output)
	} else {
		printJSON(output)
	}

	if len(diags) > 0 {
		return exitStatic
	}
	return exitOK
}

// ---- resolve command ----

func cmdResolve(filename string, cfg *config.Config) int {
	source, ok := readFile(filename)
	if !ok {
		return exitIO
	}
	rep := newReporter(os.Stderr, cfg, false)
	stmts, diags := frontEnd(source)
	if len(diags) > 0 {
		rep.diagnostics(diags)
		return exitStatic
	}

	r := resolver.New(nil)
	diags = r.Resolve(stmts)
	rep.diagnostics(diags)
	printLocals(os.Stdout, r.Locals())

	if diag.HasErrors(diags) {
		return exitStatic
	}
	return exitOK
}
