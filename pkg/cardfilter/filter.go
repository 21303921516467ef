// Package cardfilter evaluates CEL predicates against cards and their learning records.
//
// Expressions see the following variables:
//
//	id, category, base_difficulty, difficulty, state  string
//	interval_days, repetitions                       int
//	ease_factor                                      double
//
// Example: `category == "pain" && difficulty == "hard" && repetitions >= 2`.
package cardfilter

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/eslsoft/flashdeck/internal/entity"
)

// Filter is a compiled, reusable card predicate. A nil *Filter matches every card.
type Filter struct {
	expr string
	prg  cel.Program
}

var variables = map[string]*cel.Type{
	"id":              cel.StringType,
	"category":        cel.StringType,
	"base_difficulty": cel.StringType,
	"difficulty":      cel.StringType,
	"state":           cel.StringType,
	"interval_days":   cel.IntType,
	"repetitions":     cel.IntType,
	"ease_factor":     cel.DoubleType,
}

func buildEnv() (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(variables)+1)
	for name, typ := range variables {
		opts = append(opts, cel.Variable(name, typ))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

// Compile parses and type-checks expr. An empty expression yields a nil filter.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	env, err := buildEnv()
	if err != nil {
		return nil, fmt.Errorf("build filter env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: expression must evaluate to bool, got %s", entity.ErrInvalidFilter, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// Match evaluates the filter for a card and its record.
func (f *Filter) Match(card entity.Card, rec entity.CardRecord) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(activation(card, rec))
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q on card %s: %w", f.expr, card.ID, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: non-boolean result %v", entity.ErrInvalidFilter, out.Value())
	}
	return matched, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

func activation(card entity.Card, rec entity.CardRecord) map[string]any {
	return map[string]any{
		"id":              card.ID,
		"category":        string(card.Category),
		"base_difficulty": string(card.BaseDifficulty.OrDefault()),
		"difficulty":      string(rec.Difficulty),
		"state":           string(rec.State),
		"interval_days":   int64(rec.IntervalDays),
		"repetitions":     int64(rec.Repetitions),
		"ease_factor":     rec.EaseFactor,
	}
}
