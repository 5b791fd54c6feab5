package compute

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/goliatone/go-formtree/internal/ctxlog"
	"github.com/goliatone/go-formtree/pkg/tree"
)

const (
	// DefaultStepBudget bounds the number of statements and expressions a
	// single run may evaluate.
	DefaultStepBudget = 10000
	// DefaultMaxDepth bounds syntactic nesting and evaluation recursion.
	DefaultMaxDepth = 128

	// ErrorPrefix starts every fault display string.
	ErrorPrefix = "Error: "
)

// FaultKind classifies a ScriptFault.
type FaultKind string

const (
	FaultSyntax   FaultKind = "syntax"
	FaultRuntime  FaultKind = "runtime"
	FaultLimit    FaultKind = "limit"
	FaultResult   FaultKind = "result"
	FaultInternal FaultKind = "internal"
)

// ScriptFault reports a script that failed to parse or run.
type ScriptFault struct {
	Kind    FaultKind
	Message string
	// Offset is the byte offset in the script the fault points at, or -1.
	Offset int
}

func (f *ScriptFault) Error() string {
	if f == nil {
		return "compute: script fault"
	}
	return fmt.Sprintf("compute: %s fault: %s", f.Kind, f.Message)
}

func runtimeFault(pos int, format string, args ...any) *ScriptFault {
	return &ScriptFault{Kind: FaultRuntime, Message: fmt.Sprintf(format, args...), Offset: pos}
}

// Result is the outcome of one script run.
type Result struct {
	// Value is the JSON-native return value; nil for faults and empty results.
	Value any
	// Display is the stringified value, or "Error: <message>" on fault.
	Display string
	// Err is a *ScriptFault when the script failed.
	Err error
}

// Failed reports whether the run faulted.
func (r Result) Failed() bool {
	return r.Err != nil
}

func faultResult(f *ScriptFault) Result {
	return Result{Display: ErrorPrefix + f.Message, Err: f}
}

// Option customises an Evaluator.
type Option func(*Evaluator)

// WithStepBudget sets the per-run step budget. Non-positive values keep the
// default.
func WithStepBudget(steps int) Option {
	return func(e *Evaluator) {
		if steps > 0 {
			e.maxSteps = steps
		}
	}
}

// WithMaxDepth sets the nesting limit. Non-positive values keep the default.
func WithMaxDepth(depth int) Option {
	return func(e *Evaluator) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithLogger routes evaluator diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Evaluator runs computed-field scripts. It holds no per-run state and is
// safe for concurrent use.
type Evaluator struct {
	maxSteps int
	maxDepth int
	logger   *slog.Logger
}

// New constructs an Evaluator with default limits.
func New(options ...Option) *Evaluator {
	e := &Evaluator{
		maxSteps: DefaultStepBudget,
		maxDepth: DefaultMaxDepth,
		logger:   ctxlog.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

var defaultEvaluator = New()

// Evaluate runs script with the default evaluator.
func Evaluate(script string, resolver Resolver) Result {
	return defaultEvaluator.Evaluate(script, resolver)
}

// Evaluate runs script against resolver. It never panics: every failure,
// including internal ones, comes back as a faulted Result.
func (e *Evaluator) Evaluate(script string, resolver Resolver) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Script evaluation panicked", "panic", r)
			res = faultResult(&ScriptFault{Kind: FaultInternal, Message: fmt.Sprintf("internal error: %v", r), Offset: -1})
		}
	}()

	if strings.TrimSpace(script) == "" {
		return Result{}
	}
	if resolver == nil {
		resolver = MapResolver(nil)
	}

	prog, err := parse(script, e.maxDepth)
	if err != nil {
		return e.fault(err)
	}

	in := newInterp(resolver, e.maxSteps, e.maxDepth)
	value, err := in.run(prog)
	if err != nil {
		return e.fault(err)
	}

	if isNaNVal(value) {
		return e.fault(&ScriptFault{Kind: FaultResult, Message: "result is not a number", Offset: -1})
	}
	if isNullish(value) {
		return Result{}
	}
	if value.Type() == cty.Number {
		if f := floatOf(value); math.IsInf(f, 0) {
			return e.fault(&ScriptFault{Kind: FaultResult, Message: "result is not a finite number", Offset: -1})
		}
	}
	return Result{Value: nativeOf(value), Display: jsString(value)}
}

func (e *Evaluator) fault(err error) Result {
	f, ok := err.(*ScriptFault)
	if !ok {
		f = &ScriptFault{Kind: FaultRuntime, Message: err.Error(), Offset: -1}
	}
	e.logger.Debug("Script fault", "kind", f.Kind, "message", f.Message, "offset", f.Offset)
	return faultResult(f)
}

// NodeResult pairs a computed node with its evaluation.
type NodeResult struct {
	NodeID string
	Label  string
	Result
}

// EvaluateAll evaluates every computed node of t, in document order, against
// snapshot (node id to value). It is stateless: the output depends only on
// its inputs.
func (e *Evaluator) EvaluateAll(t tree.Tree, snapshot map[string]any) []NodeResult {
	resolver := NewTreeResolver(t, snapshot)
	nodes := tree.Collect(t, func(n *tree.Node) bool { return n.Kind == tree.KindComputed })
	out := make([]NodeResult, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeResult{
			NodeID: n.ID,
			Label:  n.Label(),
			Result: e.Evaluate(n.ComputeScript(), resolver),
		})
	}
	return out
}

// EvaluateAll evaluates every computed node with the default evaluator.
func EvaluateAll(t tree.Tree, snapshot map[string]any) []NodeResult {
	return defaultEvaluator.EvaluateAll(t, snapshot)
}

// Displays indexes the display strings of results by node id.
func Displays(results []NodeResult) map[string]string {
	out := make(map[string]string, len(results))
	for _, r := range results {
		out[r.NodeID] = r.Display
	}
	return out
}
