package memocalc

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ib-77/memosum/pkg/rop/tiny"
)

// Result is what a memo adds up to.
type Result struct {
	Numbers []float64 `json:"numbers" yaml:"numbers"`
	Sum     float64   `json:"sum" yaml:"sum"`
}

// Empty is the result of a memo without numbers.
func Empty() Result {
	return Result{Numbers: []float64{}}
}

// Stage names one rewriting pass of the pipeline.
type Stage string

const (
	StageWidth      Stage = "width"
	StageExclusion  Stage = "exclusion"
	StageDigitCount Stage = "digit-count"
	StageThousands  Stage = "thousands"
	StageEquations  Stage = "equations"
	StageBrackets   Stage = "brackets"
	StageMulDiv     Stage = "multiply-divide"
	StageAddSub     Stage = "add-subtract"
)

// StageSnapshot is the working text right after a stage ran.
type StageSnapshot struct {
	Stage Stage  `json:"stage" yaml:"stage"`
	Text  string `json:"text" yaml:"text"`
}

type Engine struct {
	logger *zap.Logger
	limit  func(textLen int) int
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIterationLimit sets the bound applied to every fixpoint and rewrite loop, computed
// from the byte length of the text the loop starts from.
func WithIterationLimit(limit func(textLen int) int) Option {
	return func(e *Engine) {
		if limit != nil {
			e.limit = limit
		}
	}
}

func defaultLimit(textLen int) int {
	return 2*textLen + 16
}

func New(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop(), limit: defaultLimit}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Extract runs text through the default engine.
func Extract(text string) Result {
	return defaultEngine.Extract(text)
}

// Reduce runs text through the default engine and returns the final reduced text.
func Reduce(text string) string {
	return defaultEngine.Reduce(text)
}

// Extract returns the numbers left in text once every stage has run, and their sum.
// It never fails: anything it cannot make sense of contributes nothing.
func (e *Engine) Extract(text string) Result {
	tokens := e.Tokens(text)
	numbers := make([]float64, len(tokens))
	for i, t := range tokens {
		numbers[i] = t.Value
	}
	return Result{Numbers: numbers, Sum: total(tokens)}
}

// Tokens is Extract with the literal and byte offset of every number.
func (e *Engine) Tokens(text string) []Token {
	if isBlank(text) {
		return []Token{}
	}
	return harvest(e.reduce(context.Background(), text, nil))
}

// Reduce returns the fully rewritten text that numbers are harvested from.
func (e *Engine) Reduce(text string) string {
	if isBlank(text) {
		return ""
	}
	return e.reduce(context.Background(), text, nil)
}

// Trace returns the working text after every stage.
func (e *Engine) Trace(text string) []StageSnapshot {
	if isBlank(text) {
		return []StageSnapshot{}
	}
	var snaps []StageSnapshot
	e.reduce(context.Background(), text, func(stage Stage, t string) {
		snaps = append(snaps, StageSnapshot{Stage: stage, Text: t})
	})
	return snaps
}

type step struct {
	stage Stage
	apply func(c tiny.Chain[string]) tiny.Chain[string]
}

func (e *Engine) steps(limit int) []step {
	return []step{
		{StageWidth, func(c tiny.Chain[string]) tiny.Chain[string] {
			return c.Map(normalizeWidth)
		}},
		{StageExclusion, func(c tiny.Chain[string]) tiny.Chain[string] {
			return c.Map(stripParentheticals)
		}},
		{StageDigitCount, func(c tiny.Chain[string]) tiny.Chain[string] {
			return c.Map(stripDigitCounts)
		}},
		{StageThousands, func(c tiny.Chain[string]) tiny.Chain[string] {
			return c.Fixpoint(string(StageThousands), collapseThousands, sameText, limit)
		}},
		{StageEquations, func(c tiny.Chain[string]) tiny.Chain[string] {
			return c.Rewrite(string(StageEquations), reduceEquation, limit)
		}},
		{StageBrackets, func(c tiny.Chain[string]) tiny.Chain[string] {
			return c.Fixpoint(string(StageBrackets), e.resolveBrackets, sameText, limit)
		}},
		{StageMulDiv, func(c tiny.Chain[string]) tiny.Chain[string] {
			return c.Rewrite(string(StageMulDiv), reduceMulDiv, limit)
		}},
		{StageAddSub, func(c tiny.Chain[string]) tiny.Chain[string] {
			return c.Rewrite(string(StageAddSub), reduceAddSub, limit)
		}},
	}
}

func (e *Engine) reduce(ctx context.Context, text string, observe func(Stage, string)) string {
	chain := tiny.FromValue(ctx, text)
	for _, s := range e.steps(e.limit(len(text))) {
		chain = s.apply(chain)
		if observe != nil {
			stage := s.stage
			chain = chain.Ensure(func(_ context.Context, t string) { observe(stage, t) }, nil)
		}
	}
	return e.settle(chain)
}

// arithmetic runs the multiply/divide pass and then the add/subtract pass.
func (e *Engine) arithmetic(ctx context.Context, text string) string {
	limit := e.limit(len(text))
	return e.settle(tiny.FromValue(ctx, text).
		Rewrite(string(StageMulDiv), reduceMulDiv, limit).
		Rewrite(string(StageAddSub), reduceAddSub, limit))
}

// resolveBrackets replaces every innermost [...] / ［...］ group found in one scan with
// the sum of its evaluated content. Run to a fixpoint, nested groups of the same style
// resolve inside out.
func (e *Engine) resolveBrackets(ctx context.Context, text string) string {
	matches := bracketPattern.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		last = m[1]

		var content string
		switch {
		case m[2] >= 0 && m[3] > m[2]:
			content = text[m[2]:m[3]]
		case m[4] >= 0:
			content = text[m[4]:m[5]]
		default:
			// an empty half-width group is left as written
			b.WriteString(text[m[0]:m[1]])
			continue
		}
		b.WriteString(formatNumber(total(harvest(e.arithmetic(ctx, content)))))
	}
	b.WriteString(text[last:])
	return b.String()
}

// settle turns the chain back into text. A loop that ran out of iterations is a defect
// in the rewriting rules, not in the memo: it is logged and the last text it produced is
// used as is.
func (e *Engine) settle(chain tiny.Chain[string]) string {
	calc := chain.Result().Id()
	degrade := func(_ context.Context, err error) string {
		var le *tiny.LimitError[string]
		if errors.As(err, &le) {
			e.logger.Error("rewrite loop did not settle",
				zap.Stringer("calc", calc),
				zap.String("stage", le.Stage),
				zap.Int("limit", le.Limit),
				zap.Int("text_len", len(le.Last)))
			return le.Last
		}
		e.logger.Error("pipeline failed", zap.Stringer("calc", calc), zap.Error(err))
		return ""
	}
	return tiny.Finally(chain,
		func(_ context.Context, t string) string { return t },
		degrade,
		degrade)
}
