package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"git.sr.ht/~jackmordaunt/tasje/internal/document"
	"git.sr.ht/~jackmordaunt/tasje/internal/errs"
)

// Load reads and parses a build-config document from path, dispatching on
// file extension. .js/.mjs configs are evaluated by an external Node
// interpreter; everything else is parsed in-process.
func Load(path string) (document.Value, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs":
		return loadScripted(path)
	case ".json", ".json5":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.WithPath(errs.IO, path, err)
		}
		return parseJSON5(data, path)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.WithPath(errs.IO, path, err)
		}
		var v document.Value
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errs.WithPath(errs.ConfigParse, path, err)
		}
		return v, nil
	case ".toml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.WithPath(errs.IO, path, err)
		}
		var v map[string]interface{}
		if err := toml.Unmarshal(data, &v); err != nil {
			return nil, errs.WithPath(errs.ConfigParse, path, err)
		}
		return v, nil
	default:
		return nil, errs.WithPath(errs.ConfigFormat, path, fmt.Errorf("unrecognised config extension %q", filepath.Ext(path)))
	}
}

// siblingConfigNames are tried, in order, next to package.json when the
// manifest carries no "build" key of its own.
var siblingConfigNames = []string{"electron-builder.yml", "electron-builder.yaml"}

// LoadBuildConfig resolves the effective build-config document for a
// package rooted at dir: the manifest's own "build" key if present and
// non-empty, otherwise the first sibling electron-builder.yml/.yaml found
// next to the manifest. If neither source yields a config the lookup
// failures are joined into a single ConfigParse error.
func LoadBuildConfig(manifest document.Value, dir string) (document.Value, error) {
	if v, ok := document.Get(manifest, "build"); ok {
		if m, ok := document.Map(v); ok && len(m) > 0 {
			return v, nil
		}
	}
	var siblingErr error
	for _, name := range siblingConfigNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			siblingErr = errors.Join(siblingErr, err)
			continue
		}
		return Load(path)
	}
	return nil, errs.WithPath(errs.ConfigParse, dir, errors.Join(
		fmt.Errorf("manifest has no \"build\" key"), siblingErr))
}

// parseJSON5 strips // and /* */ comments (trailing commas aside, that's
// the only JSON5 extension tasje needs) before handing the result to
// encoding/json.
func parseJSON5(data []byte, path string) (document.Value, error) {
	var v document.Value
	if err := json.Unmarshal(stripComments(data), &v); err != nil {
		return nil, errs.WithPath(errs.ConfigParse, path, err)
	}
	return v, nil
}

// stripComments removes line (//) and block (/* */) comments from JSON
// text, tracking string and escape state so that the sequences are left
// alone when they occur inside a string literal.
func stripComments(data []byte) []byte {
	var out bytes.Buffer
	inString := false
	inBlockComment := false
	escaped := false
	for i := 0; i < len(data); i++ {
		c := data[i]

		if inBlockComment {
			if c == '*' && i+1 < len(data) && data[i+1] == '/' {
				inBlockComment = false
				i++
			}
			continue
		}

		if inString {
			out.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			out.WriteByte(c)
		case c == '/' && i+1 < len(data) && data[i+1] == '/':
			for i < len(data) && data[i] != '\n' {
				i++
			}
			out.WriteByte('\n')
		case c == '/' && i+1 < len(data) && data[i+1] == '*':
			inBlockComment = true
			i++
		default:
			out.WriteByte(c)
		}
	}
	return out.Bytes()
}

// scriptedConfigRunner is handed to the Node interpreter via -e. It loads
// a CommonJS or ESM config module, calls its default export if the export
// is a function (electron-builder's scripted-config convention), and
// prints the resolved config as a single line of JSON.
const scriptedConfigRunner = `
const path = process.argv[2];
(async () => {
  let mod;
  try {
    mod = require(path);
  } catch (requireErr) {
    mod = await import(require('url').pathToFileURL(path).href);
  }
  let config = mod && mod.__esModule ? mod.default : mod;
  if (typeof config === 'function') {
    config = await config();
  }
  process.stdout.write(JSON.stringify(config));
})().catch((err) => {
  console.error(err && err.stack ? err.stack : String(err));
  process.exit(1);
});
`

// loadScripted evaluates a .js/.mjs build config in an external Node
// process. The interpreter defaults to "node" and can be overridden with
// the NODE environment variable; the child runs with IS_TASJE and
// ELECTRON_RUN_AS_NODE set so config scripts that check for an Electron
// host behave as under electron-builder.
func loadScripted(path string) (document.Value, error) {
	interpreter := os.Getenv("NODE")
	if interpreter == "" {
		interpreter = "node"
	}

	cmd := exec.Command(interpreter, "-e", scriptedConfigRunner, "--", path)
	cmd.Env = append(os.Environ(), "IS_TASJE=1", "ELECTRON_RUN_AS_NODE=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errs.WithPath(errs.ConfigChild, path, fmt.Errorf("%w: %s", err, stderr.String()))
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return nil, errs.WithPath(errs.ConfigParse, path, fmt.Errorf("scripted config produced no output"))
	}

	var v document.Value
	if err := json.Unmarshal(out, &v); err != nil {
		return nil, errs.WithPath(errs.ConfigParse, path, err)
	}
	return v, nil
}
