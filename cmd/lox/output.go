package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"lox-lang/internal/config"
	"lox-lang/internal/diag"
	"lox-lang/internal/resolver"
	"lox-lang/internal/runtime"
	"lox-lang/internal/token"
	"os"

	"gopkg.in/yaml.v3"
)

// ---- ANSI colors ----

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// ---- structured output ----

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: JSON encoding failed: %v\n", err)
	}
}

func printYAML(v interface{}) {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: YAML encoding failed: %v\n", err)
	}
}

func diagsToSlice(diags []diag.Diagnostic) []map[string]interface{} {
	result := make([]map[string]interface{}, len(diags))
	for i, d := range diags {
		result[i] = map[string]interface{}{
			"code":     d.Code,
			"severity": d.Severity.String(),
			"message":  d.Message,
			"line":     d.Pos.Line,
			"column":   d.Pos.Column,
			"offset":   d.Pos.Offset,
		}
		if d.Where != "" {
			result[i]["where"] = d.Where
		}
	}
	return result
}

// ---- diagnostics and runtime errors ----

// reporter writes diagnostics and runtime errors to the error stream in the
// configured format.
type reporter struct {
	w        io.Writer
	format   string
	warnings bool
	color    bool
}

func newReporter(w io.Writer, cfg *config.Config, color bool) *reporter {
	return &reporter{
		w:        w,
		format:   cfg.Diagnostics.Format,
		warnings: cfg.WarningsEnabled(),
		color:    color,
	}
}

func (r *reporter) diagnostics(diags []diag.Diagnostic) {
	var shown []diag.Diagnostic
	for _, d := range diags {
		if d.Severity == diag.Warning && !r.warnings {
			continue
		}
		shown = append(shown, d)
	}
	if len(shown) == 0 {
		return
	}

	if r.format == config.FormatJSON {
		enc := json.NewEncoder(r.w)
		if err := enc.Encode(diagsToSlice(shown)); err != nil {
			fmt.Fprintf(r.w, "error: JSON encoding failed: %v\n", err)
		}
		return
	}
	for _, d := range shown {
		color := colorRed
		if d.Severity == diag.Warning {
			color = colorYellow
		}
		r.line(color, d.String())
	}
}

func (r *reporter) runtimeError(err error) {
	var rtErr *runtime.RuntimeError
	if r.format == config.FormatJSON && errors.As(err, &rtErr) {
		enc := json.NewEncoder(r.w)
		_ = enc.Encode(map[string]interface{}{
			"severity": "runtime",
			"message":  rtErr.Message,
			"line":     rtErr.Token.Pos.Line,
		})
		return
	}
	r.line(colorRed, err.Error())
}

func (r *reporter) line(color, text string) {
	if r.color {
		fmt.Fprintf(r.w, "%s%s%s\n", color, text, colorReset)
		return
	}
	fmt.Fprintln(r.w, text)
}

// ---- token output helpers ----

func printTokensText(tokens []token.Token) {
	for _, tok := range tokens {
		fmt.Printf("%-14s %-20s %d:%d\n", tok.Kind, tok.Lexeme, tok.Pos.Line, tok.Pos.Column)
	}
}

func printTokensJSON(tokens []token.Token, diags []diag.Diagnostic) {
	type tokenJSON struct {
		Kind    string      `json:"kind"`
		Lexeme  string      `json:"lexeme"`
		Literal interface{} `json:"literal,omitempty"`
		Line    int         `json:"line"`
		Column  int         `json:"column"`
		Offset  int         `json:"offset"`
	}

	var toks []tokenJSON
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:    tok.Kind.String(),
			Lexeme:  tok.Lexeme,
			Literal: tok.Literal,
			Line:    tok.Pos.Line,
			Column:  tok.Pos.Column,
			Offset:  tok.Pos.Offset,
		})
	}

	output := map[string]interface{}{
		"tokens":      toks,
		"diagnostics": diagsToSlice(diags),
	}
	printJSON(output)
}

// ---- resolver output ----

// printLocals prints one "line:col name -> depth" row per resolved reference.
func printLocals(w io.Writer, locals resolver.Locals) {
	for _, e := range locals.Entries() {
		fmt.Fprintf(w, "%d:%d %s -> %d\n", e.Pos.Line, e.Pos.Column, e.Name, e.Depth)
	}
}
