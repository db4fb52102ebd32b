package service

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/uuid"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
	"github.com/WhatDanDoes/mediashare/common/logger"
)

// ScreenerAgentID is the reserved flagger identity used when a screening
// rule flags a resource. It is never a real agent.
var ScreenerAgentID = uuid.MustParse("00000000-0000-0000-0000-00000000f1a6")

// Screener evaluates operator-configured CEL expressions against note
// text to auto-flag suspect content. Rules see:
//
//	text      string - the trimmed note text
//	likes     int    - current like count
//	notes     int    - note count including the new note
//	published bool   - whether the resource is published
//
// Example rule: text.contains('http://') && !published
type Screener struct {
	rules []string
	cache map[string]cel.Program
	mu    sync.RWMutex
	log   *logger.Logger
}

// NewScreener creates a screener with caching of compiled rules.
// An empty rule set screens nothing.
func NewScreener(rules []string, log *logger.Logger) *Screener {
	return &Screener{
		rules: rules,
		cache: make(map[string]cel.Program),
		log:   log,
	}
}

// Match reports whether any rule matches the note text in the context of
// the resource. A rule that fails to compile or evaluate is skipped with
// a warning; screening must never block a note from being posted.
func (s *Screener) Match(text string, res *models.Resource) bool {
	if s == nil || len(s.rules) == 0 {
		return false
	}

	vars := map[string]interface{}{
		"text":      text,
		"likes":     len(res.Likes),
		"notes":     len(res.Notes),
		"published": res.Published(),
	}

	for _, rule := range s.rules {
		matched, err := s.evaluate(rule, vars)
		if err != nil {
			s.log.Warn("screening rule skipped", "rule", rule, "error", err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func (s *Screener) evaluate(rule string, vars map[string]interface{}) (bool, error) {
	s.mu.RLock()
	prg, exists := s.cache[rule]
	s.mu.RUnlock()

	if !exists {
		var err error
		prg, err = s.compile(rule)
		if err != nil {
			return false, err
		}

		s.mu.Lock()
		s.cache[rule] = prg
		s.mu.Unlock()
	}

	out, _, err := prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("rule evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule did not return boolean, got %T", out.Value())
	}

	return result, nil
}

func (s *Screener) compile(rule string) (cel.Program, error) {
	env, err := cel.NewEnv(
		cel.Variable("text", cel.StringType),
		cel.Variable("likes", cel.IntType),
		cel.Variable("notes", cel.IntType),
		cel.Variable("published", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("rule compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return prg, nil
}
