package starlark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapasp/pkg/core"
)

// Hook names looked up in a script.
const (
	HookAccept    = "accept"
	HookKeep      = "keep"
	HookTransform = "transform"
)

// ErrNoHooks is returned when a script defines none of the hooks.
var ErrNoHooks = errors.New("script defines none of accept, keep, transform")

// Input is one solver model handed to a filter.
type Input struct {
	Model   core.Model
	Number  int
	Cost    []int
	Optimal bool
}

// Result is the outcome of applying a filter to one Input.
type Result struct {
	Model core.Model
	// Accepted is false when the accept hook rejected the model.
	Accepted bool
}

// Filter applies the hooks of a loaded script to models. It is safe for
// concurrent use.
type Filter struct {
	name      string
	accept    starlark.Callable
	keep      starlark.Callable
	transform starlark.Callable
	pool      *ThreadPool
	logger    *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger routes script print() output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// LoadFilter reads and executes the script at path. load() statements
// in the script resolve relative to its directory.
func LoadFilter(path string, opts ...Option) (*Filter, error) {
	src, err := os.ReadFile(path) //nolint:gosec // G304: path is given by the user on the command line
	if err != nil {
		return nil, &ScriptError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}
	return newFilter(path, src, filepath.Dir(path), opts)
}

// NewFilter executes src as a script named name. load() statements
// resolve relative to the working directory.
func NewFilter(name string, src []byte, opts ...Option) (*Filter, error) {
	return newFilter(name, src, ".", opts)
}

func newFilter(name string, src []byte, dir string, opts []Option) (*Filter, error) {
	f := &Filter{
		name:   name,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}

	modules := newModuleLoader(dir)
	f.pool = NewThreadPool(0, modules.load)

	thread := f.pool.Get("exec:" + name)
	thread.Print = f.print
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, name, src, Predeclared())
	f.pool.Put(thread)
	if err != nil {
		return nil, &ScriptError{File: name, Message: err.Error()}
	}

	hooks := map[string]*starlark.Callable{
		HookAccept:    &f.accept,
		HookKeep:      &f.keep,
		HookTransform: &f.transform,
	}
	found := false
	for hook, dst := range hooks {
		v, ok := globals[hook]
		if !ok {
			continue
		}
		fn, ok := v.(starlark.Callable)
		if !ok {
			return nil, &ScriptError{File: name, Hook: hook, Message: fmt.Sprintf("must be callable, got %s", v.Type())}
		}
		*dst = fn
		found = true
	}
	if !found {
		return nil, &ScriptError{File: name, Message: ErrNoHooks.Error(), err: ErrNoHooks}
	}
	return f, nil
}

// Name returns the script name.
func (f *Filter) Name() string { return f.name }

func (f *Filter) print(_ *starlark.Thread, msg string) {
	f.logger.Info(msg, "script", f.name)
}

// Apply runs the hooks over one model. The accept hook sees the whole
// model first; keep and transform then run per element in model order.
// A transform returning None drops the element.
func (f *Filter) Apply(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	thread := f.pool.Get(f.name)
	thread.Print = f.print
	defer f.pool.Put(thread)
	stop := context.AfterFunc(ctx, func() { thread.Cancel(context.Cause(ctx).Error()) })
	defer stop()

	if f.accept != nil {
		m, err := modelToStarlark(in)
		if err != nil {
			return Result{}, err
		}
		v, err := starlark.Call(thread, f.accept, starlark.Tuple{m}, nil)
		if err != nil {
			return Result{}, f.hookError(HookAccept, err)
		}
		if !bool(v.Truth()) {
			return Result{Accepted: false}, nil
		}
	}

	elems := in.Model.Elements()
	out := make([]core.Element, 0, len(elems))
	for _, e := range elems {
		v := ElementToStarlark(e)
		if f.keep != nil {
			ok, err := starlark.Call(thread, f.keep, starlark.Tuple{v}, nil)
			if err != nil {
				return Result{}, f.hookError(HookKeep, err)
			}
			if !bool(ok.Truth()) {
				continue
			}
		}
		if f.transform != nil {
			nv, err := starlark.Call(thread, f.transform, starlark.Tuple{v}, nil)
			if err != nil {
				return Result{}, f.hookError(HookTransform, err)
			}
			if nv == starlark.None {
				continue
			}
			ne, err := ElementFromStarlark(nv)
			if err != nil {
				return Result{}, f.hookError(HookTransform, err)
			}
			e = ne
		}
		out = append(out, e)
	}

	m, err := core.ModelOfElements(out)
	if err != nil {
		return Result{}, err
	}
	return Result{Model: m, Accepted: true}, nil
}

// ApplyAll applies the filter to every input concurrently, at most limit
// at a time. Results keep the order of inputs.
func (f *Filter) ApplyAll(ctx context.Context, inputs []Input, limit int) ([]Result, error) {
	results := make([]Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, in := range inputs {
		g.Go(func() error {
			r, err := f.Apply(ctx, in)
			if err != nil {
				return fmt.Errorf("model %d: %w", in.Number, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (f *Filter) hookError(hook string, err error) error {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return &ScriptError{File: f.name, Hook: hook, Message: evalErr.Backtrace(), err: err}
	}
	return &ScriptError{File: f.name, Hook: hook, Message: err.Error(), err: err}
}

func modelToStarlark(in Input) (starlark.Value, error) {
	elems := in.Model.Elements()
	tuple := make(starlark.Tuple, len(elems))
	for i, e := range elems {
		tuple[i] = ElementToStarlark(e)
	}
	cost, err := GoToStarlark(in.Cost)
	if err != nil {
		return nil, err
	}
	return starlarkstruct.FromStringDict(starlark.String("model"), starlark.StringDict{
		"number":   starlark.MakeInt(in.Number),
		"cost":     cost,
		"optimal":  starlark.Bool(in.Optimal),
		"elements": tuple,
	}), nil
}

// moduleLoader resolves load() statements against a directory. Each
// module is executed once and only names not starting with _ are
// exported.
type moduleLoader struct {
	dir   string
	mu    sync.Mutex
	cache map[string]*moduleEntry
}

type moduleEntry struct {
	globals starlark.StringDict
	err     error
	done    bool
}

func newModuleLoader(dir string) *moduleLoader {
	return &moduleLoader{dir: dir, cache: make(map[string]*moduleEntry)}
}

func (l *moduleLoader) load(_ *starlark.Thread, module string) (starlark.StringDict, error) {
	if !strings.HasSuffix(module, ".star") {
		return nil, fmt.Errorf("load %q: module must be a .star file", module)
	}
	path := filepath.Clean(filepath.Join(l.dir, module))
	if filepath.IsAbs(module) || strings.HasPrefix(module, "..") {
		return nil, fmt.Errorf("load %q: module must be inside %s", module, l.dir)
	}

	l.mu.Lock()
	if e, ok := l.cache[path]; ok {
		l.mu.Unlock()
		if !e.done {
			return nil, fmt.Errorf("load %q: cycle in load graph", module)
		}
		return e.globals, e.err
	}
	e := &moduleEntry{}
	l.cache[path] = e
	l.mu.Unlock()

	e.globals, e.err = l.exec(path)
	l.mu.Lock()
	e.done = true
	l.mu.Unlock()
	return e.globals, e.err
}

func (l *moduleLoader) exec(path string) (starlark.StringDict, error) {
	src, err := os.ReadFile(path) //nolint:gosec // G304: path is confined to the script directory
	if err != nil {
		return nil, fmt.Errorf("failed to read module: %w", err)
	}
	thread := &starlark.Thread{
		Name:  "load:" + filepath.Base(path),
		Print: func(_ *starlark.Thread, _ string) {},
		Load:  l.load,
	}
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, path, src, Predeclared())
	if err != nil {
		return nil, err
	}
	exports := make(starlark.StringDict, len(globals))
	for name, v := range globals {
		if !strings.HasPrefix(name, "_") {
			exports[name] = v
		}
	}
	return exports, nil
}

// ScriptError reports a failure loading a script or running one of its
// hooks.
type ScriptError struct {
	File    string
	Hook    string
	Message string
	err     error
}

func (e *ScriptError) Error() string {
	if e.Hook != "" {
		return fmt.Sprintf("%s: %s: %s", filepath.Base(e.File), e.Hook, e.Message)
	}
	return fmt.Sprintf("%s: %s", filepath.Base(e.File), e.Message)
}

func (e *ScriptError) Unwrap() error { return e.err }
