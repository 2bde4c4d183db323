package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/prose/compiler"
)

func parseFile(path string) (*compiler.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return compiler.Parse(string(data))
}

func setupProject(t *testing.T, files map[string]string) *Manifest {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		writeFile(t, filepath.Join(dir, filepath.FromSlash(name)), content)
	}
	m, err := Default(dir)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestResolveOrder(t *testing.T) {
	m := setupProject(t, map[string]string{
		"src/main.prose":     "import util, net.http\nimport \"math\"\nshow 1\n",
		"src/util.prose":     "function helper()\nreturn 1\nend function\n",
		"src/net/http.prose": "from util import helper\nshow helper()\n",
	})

	units, external, err := NewResolver(m, parseFile).Resolve(filepath.Join(m.Dir, "src", "main.prose"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	var order []string
	for _, u := range units {
		order = append(order, u.Module)
		if u.Tree == nil {
			t.Errorf("unit %s has no tree", u.Module)
		}
	}
	if got := strings.Join(order, " "); got != "util net.http main" {
		t.Errorf("load order = %q, want %q", got, "util net.http main")
	}

	if len(external) != 1 || external[0] != "math" {
		t.Errorf("external = %v, want [math]", external)
	}

	main := units[len(units)-1]
	if got := strings.Join(main.Imports, ","); got != "util,net.http,math" {
		t.Errorf("main imports = %q", got)
	}
	if main.Path != filepath.Join(m.Dir, "src", "main.prose") {
		t.Errorf("main path = %q", main.Path)
	}
}

func TestResolveCycle(t *testing.T) {
	m := setupProject(t, map[string]string{
		"src/a.prose": "import b\n",
		"src/b.prose": "import c\n",
		"src/c.prose": "import a\n",
	})

	_, _, err := NewResolver(m, parseFile).Resolve(filepath.Join(m.Dir, "src", "a.prose"))
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !strings.Contains(err.Error(), "import cycle: a -> b -> c -> a") {
		t.Errorf("error = %v", err)
	}
}

func TestResolveParseError(t *testing.T) {
	m := setupProject(t, map[string]string{
		"src/main.prose":   "import broken\n",
		"src/broken.prose": "set x to\n",
	})

	_, _, err := NewResolver(m, parseFile).Resolve(filepath.Join(m.Dir, "src", "main.prose"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "broken.prose") {
		t.Errorf("error should name the failing file: %v", err)
	}
}

func TestResolveEntryOutsideSources(t *testing.T) {
	m := setupProject(t, map[string]string{
		"script.prose":   "import util\n",
		"src/util.prose": "show 1\n",
	})

	units, _, err := NewResolver(m, parseFile).Resolve(filepath.Join(m.Dir, "script.prose"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(units) != 2 || units[0].Module != "util" || units[1].Module != "script" {
		t.Errorf("units = %+v", units)
	}
}

func TestImports(t *testing.T) {
	tree, err := compiler.Parse("import a, \"lib/b.prose\"\nfrom a import x\nif true then\nimport c\nend if\n")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(Imports(tree, ".prose"), ","); got != "a,lib.b,c" {
		t.Errorf("Imports = %q, want a,lib.b,c", got)
	}
	if Imports(nil, ".prose") != nil {
		t.Error("Imports(nil) should be nil")
	}
}
