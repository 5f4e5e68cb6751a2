package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/turtle"
	"gopkg.in/yaml.v3"
)

// ErrUnknownStep is returned when a step names a command that does not exist.
var ErrUnknownStep = errors.New("unknown step")

// Script is a decoded turtle program.
type Script struct {
	Title string
	// Speed, when set, is applied before the first step.
	Speed *int
	Steps []Step
}

// Step is one compiled command.
type Step struct {
	Op   string
	play func(t *turtle.Turtle)
}

// file is the on-disk layout; steps stay loosely typed until compiled.
type file struct {
	Title string `yaml:"title"`
	Speed *int   `yaml:"speed"`
	Steps []any  `yaml:"steps"`
}

// Load reads a script from a .yaml, .yml or .json file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if s.Title == "" {
		s.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// DecodeOption configures Decode.
type DecodeOption func(*compiler)

// WithoutScreenOps rejects window-level steps (clear, background, title, bye)
// with domain.ErrScreenForbidden. Hosts running several sessions on one
// window use it so that no session can touch the others.
func WithoutScreenOps() DecodeOption {
	return func(c *compiler) {
		c.noScreen = true
	}
}

// compiler holds the settings of one Decode call.
type compiler struct {
	noScreen bool
}

// screenOps are the steps acting on the whole window.
var screenOps = map[string]bool{
	"clear":      true,
	"background": true,
	"title":      true,
	"bye":        true,
}

// Decode parses a script. JSON is accepted as a subset of YAML.
func Decode(data []byte, opts ...DecodeOption) (*Script, error) {
	c := &compiler{}
	for _, opt := range opts {
		opt(c)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	steps, err := c.compile(f.Steps, "steps")
	if err != nil {
		return nil, err
	}
	return &Script{Title: f.Title, Speed: f.Speed, Steps: steps}, nil
}

// Play runs the script on t. It aborts like any turtle call; use Run to get
// the error back.
func (s *Script) Play(t *turtle.Turtle) {
	if s.Speed != nil {
		t.Speed(*s.Speed)
	}
	playAll(t, s.Steps)
}

// Run plays the script and returns the error that aborted it, if any.
func (s *Script) Run(t *turtle.Turtle) error {
	return turtle.Guard(func() { s.Play(t) })
}

// Len returns the number of top-level steps.
func (s *Script) Len() int {
	return len(s.Steps)
}

func playAll(t *turtle.Turtle, steps []Step) {
	for _, step := range steps {
		step.play(t)
	}
}

func (c *compiler) compile(raw []any, path string) ([]Step, error) {
	steps := make([]Step, 0, len(raw))
	for i, item := range raw {
		where := fmt.Sprintf("%s[%d]", path, i)

		op, arg, err := split(item)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", where, err)
		}
		if c.noScreen && screenOps[op] {
			return nil, fmt.Errorf("%s: %w: %q", where, domain.ErrScreenForbidden, op)
		}
		var play func(*turtle.Turtle)
		if op == "repeat" {
			play, err = c.compileRepeat(arg, where)
		} else if build, ok := builders[op]; ok {
			play, err = build(arg)
		} else {
			return nil, fmt.Errorf("%s: %w %q", where, ErrUnknownStep, op)
		}
		if err != nil {
			return nil, fmt.Errorf("%s (%s): %w", where, op, err)
		}
		steps = append(steps, Step{Op: op, play: play})
	}
	return steps, nil
}

// split turns "penup" or {"forward": 10} into its op and argument.
func split(item any) (string, any, error) {
	switch v := item.(type) {
	case string:
		return normalize(v), nil, nil
	case map[string]any:
		if len(v) != 1 {
			return "", nil, fmt.Errorf("a step must have exactly one command, got %d", len(v))
		}
		for op, arg := range v {
			return normalize(op), arg, nil
		}
	}
	return "", nil, fmt.Errorf("unexpected step %T", item)
}

func normalize(op string) string {
	op = strings.ToLower(strings.TrimSpace(op))
	return strings.NewReplacer("-", "_", " ", "_").Replace(op)
}
