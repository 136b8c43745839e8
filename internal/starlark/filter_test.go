package starlark

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leapstack-labs/leapasp/internal/testutil"
	"github.com/leapstack-labs/leapasp/pkg/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func model(t *testing.T, items ...any) core.Model {
	t.Helper()
	m, err := core.ModelOfElements(items...)
	require.NoError(t, err)
	return m
}

func TestFilter_Apply(t *testing.T) {
	in := Input{Model: model(t, 1, `"s"`, "p(1)", "p(2)", "q(a)"), Number: 1}

	tests := []struct {
		name     string
		script   string
		want     string
		rejected bool
	}{
		{
			name:   "keep by predicate",
			script: "def keep(e):\n    return matches(e, \"p/1\")\n",
			want:   "p(1) p(2)",
		},
		{
			name:   "keep numbers",
			script: "def keep(e):\n    return type(e) == \"int\"\n",
			want:   "1",
		},
		{
			name: "transform renames",
			script: `
def transform(e):
    if type(e) != "struct" or e.name != "p":
        return e
    return atom("r(%d)" % (e.args[0] * 10))
`,
			want: `1 "s" q(a) r(10) r(20)`,
		},
		{
			name:   "transform drops with None",
			script: "def transform(e):\n    return None if type(e) == \"string\" else e\n",
			want:   "1 p(1) p(2) q(a)",
		},
		{
			name: "keep then transform",
			script: `
def keep(e):
    return type(e) == "struct"

def transform(e):
    return e.text
`,
			want: `"p(1)" "p(2)" "q(a)"`,
		},
		{
			name:     "accept rejects",
			script:   "def accept(model):\n    return len(model.elements) > 10\n",
			rejected: true,
		},
		{
			name:   "accept sees the model number",
			script: "def accept(model):\n    return model.number == 1 and model.cost == []\n",
			want:   `1 "s" p(1) p(2) q(a)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFilter("test.star", []byte(tt.script))
			require.NoError(t, err)

			got, err := f.Apply(context.Background(), in)
			require.NoError(t, err)
			if tt.rejected {
				assert.False(t, got.Accepted)
				return
			}
			assert.True(t, got.Accepted)
			assert.Equal(t, tt.want, got.Model.String())
		})
	}
}

func TestFilter_Errors(t *testing.T) {
	t.Run("no hooks", func(t *testing.T) {
		_, err := NewFilter("empty.star", []byte("x = 1\n"))
		require.ErrorIs(t, err, ErrNoHooks)
	})

	t.Run("hook not callable", func(t *testing.T) {
		_, err := NewFilter("bad.star", []byte("keep = 1\n"))
		var se *ScriptError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, HookKeep, se.Hook)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := NewFilter("syntax.star", []byte("def keep(e)\n"))
		var se *ScriptError
		require.True(t, errors.As(err, &se))
		assert.Contains(t, se.Error(), "syntax.star")
	})

	t.Run("runtime error in hook", func(t *testing.T) {
		f, err := NewFilter("fail.star", []byte("def keep(e):\n    return 1 // 0\n"))
		require.NoError(t, err)
		_, err = f.Apply(context.Background(), Input{Model: model(t, "a")})
		var se *ScriptError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, HookKeep, se.Hook)
		assert.Contains(t, se.Error(), "division by zero")
	})

	t.Run("transform returns a list", func(t *testing.T) {
		f, err := NewFilter("list.star", []byte("def transform(e):\n    return [e]\n"))
		require.NoError(t, err)
		_, err = f.Apply(context.Background(), Input{Model: model(t, "a")})
		require.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		f, err := NewFilter("loop.star", []byte("def keep(e):\n    for i in range(100000000):\n        pass\n    return True\n"))
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = f.Apply(ctx, Input{Model: model(t, "a")})
		require.Error(t, err)
	})
}

func TestFilter_ApplyAll(t *testing.T) {
	f, err := NewFilter("odd.star", []byte("def accept(model):\n    return model.number % 2 == 1\n"))
	require.NoError(t, err)

	inputs := make([]Input, 6)
	for i := range inputs {
		inputs[i] = Input{Model: model(t, i), Number: i + 1}
	}

	results, err := f.ApplyAll(context.Background(), inputs, 2)
	require.NoError(t, err)
	require.Len(t, results, len(inputs))
	for i, r := range results {
		assert.Equal(t, i%2 == 0, r.Accepted, "model %d", i+1)
	}
}

func TestLoadFilter_LoadsModules(t *testing.T) {
	dir := t.TempDir()
	lib := "def is_edge(e):\n    return matches(e, \"edge/2\")\n\n_hidden = 1\n"
	script := "load(\"lib.star\", \"is_edge\")\n\ndef keep(e):\n    print(\"saw\", e)\n    return is_edge(e)\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.star"), []byte(lib), 0o600))
	path := filepath.Join(dir, "main.star")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o600))

	f, err := LoadFilter(path, WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, path, f.Name())

	got, err := f.Apply(context.Background(), Input{Model: model(t, "edge(1,2)", "node(1)")})
	require.NoError(t, err)
	assert.Equal(t, "edge(1,2)", got.Model.String())

	t.Run("private names are not exported", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.star")
		require.NoError(t, os.WriteFile(bad, []byte("load(\"lib.star\", \"_hidden\")\ndef keep(e):\n    return True\n"), 0o600))
		_, err := LoadFilter(bad)
		require.Error(t, err)
	})

	t.Run("modules outside the directory", func(t *testing.T) {
		bad := filepath.Join(dir, "escape.star")
		require.NoError(t, os.WriteFile(bad, []byte("load(\"../x.star\", \"y\")\ndef keep(e):\n    return True\n"), 0o600))
		_, err := LoadFilter(bad)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFilter(filepath.Join(dir, "missing.star"))
		var se *ScriptError
		require.True(t, errors.As(err, &se))
	})
}
