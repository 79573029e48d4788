package view

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2/log"
)

type Config struct {
	// If true, templates will be compiled on every request. Good for development.
	CompileOnRender bool
	// FS holds layouts/, shared/ and one directory per group of views.
	FS fs.FS
}

const Suffix = ".tmpl"
const Layout = "layouts/main" + Suffix

var ErrTemplateNotFound = errors.New("template not found")

var funcs = template.FuncMap{
	"join": strings.Join,
}

// Engine renders html templates. A view is rendered inside the main layout together
// with the shared partials and the partials of its own directory. Partials are files
// starting with "_" and can also be rendered on their own.
type Engine struct {
	config *Config

	mu                     sync.RWMutex
	views                  map[string]*template.Template
	viewPartialCollections map[string]*template.Template
	sharedPartials         *template.Template
}

func New(config Config) (*Engine, error) {
	e := &Engine{config: &config}
	if err := e.Load(); err != nil {
		return nil, err
	}
	return e, nil
}

// MustNew is like New but panics if the templates do not parse.
func MustNew(config Config) *Engine {
	e, err := New(config)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Engine) Load() error {
	log.Debug("view.Load()")

	views := make(map[string]*template.Template)
	collections := make(map[string]*template.Template)

	sharedPartials, err := e.listPartials("shared")
	if err != nil {
		return err
	}
	var shared *template.Template
	if len(sharedPartials) > 0 {
		if shared, err = parse(e.config.FS, sharedPartials...); err != nil {
			return err
		}
	}

	viewDirs, err := e.listViewDirs()
	if err != nil {
		return err
	}

	for _, viewDir := range viewDirs {
		names, partials, err := e.scanViewDir(viewDir)
		if err != nil {
			return err
		}

		if len(partials) > 0 {
			files := append(append([]string{}, partials...), sharedPartials...)
			if collections[viewDir], err = parse(e.config.FS, files...); err != nil {
				return err
			}
		}

		for _, name := range names {
			allTemplates := make([]string, 0, len(sharedPartials)+len(partials)+2)
			allTemplates = append(allTemplates, Layout, name)
			allTemplates = append(allTemplates, sharedPartials...)
			allTemplates = append(allTemplates, partials...)

			tmpl, err := parse(e.config.FS, allTemplates...)
			if err != nil {
				return err
			}
			views[name] = tmpl

			log.Debug("view.Load(): loaded template:", name)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.views = views
	e.viewPartialCollections = collections
	e.sharedPartials = shared

	return nil
}

// Render renders a template by name. Name should be the path to the template file, relative
// to the views root, e.g. "auth/page" or "auth/_validation". If the name has no suffix,
// Suffix will be assumed.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	key, err := parseTemplateName(name)
	if err != nil {
		return err
	}

	if e.config.CompileOnRender {
		if err := e.Load(); err != nil {
			panic(err)
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	// Execution errors are programmer mistakes that must be fixed, so they panic.
	switch {
	case key.isShared:
		if e.sharedPartials == nil || e.sharedPartials.Lookup(key.name) == nil {
			return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		if err := e.sharedPartials.ExecuteTemplate(w, key.name, data); err != nil {
			panic(err)
		}
	case key.isPartial:
		tmpl, ok := e.viewPartialCollections[key.viewDir]
		if !ok || tmpl.Lookup(key.name) == nil {
			return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		if err := tmpl.ExecuteTemplate(w, key.name, data); err != nil {
			panic(err)
		}
	default:
		tmpl, ok := e.views[key.FullPath()]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		if err := tmpl.Execute(w, data); err != nil {
			panic(err)
		}
	}

	return nil
}

// Component wraps a template as a templ.Component.
func (e *Engine) Component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return e.Render(w, name, data)
	})
}

func parse(fsys fs.FS, files ...string) (*template.Template, error) {
	return template.New(path.Base(files[0])).Funcs(funcs).ParseFS(fsys, files...)
}

func parseTemplateName(name string) (viewKey, error) {
	parts := strings.SplitN(name, "/", 2)
	if len(parts) != 2 || strings.Contains(parts[1], "/") {
		return viewKey{}, fmt.Errorf("template name parse error: %q must be <dir>/<name>", name)
	}

	nameWithExtension := parts[1]
	if !strings.HasSuffix(nameWithExtension, Suffix) {
		nameWithExtension += Suffix
	}

	return viewKey{
		viewDir:   parts[0],
		name:      nameWithExtension,
		isPartial: strings.HasPrefix(parts[1], "_"),
		isShared:  parts[0] == "shared",
	}, nil
}

type viewKey struct {
	viewDir   string
	name      string
	isPartial bool
	isShared  bool
}

func (k viewKey) FullPath() string {
	return k.viewDir + "/" + k.name
}

// scanViewDir returns a list of all views and partials in the given view directory.
func (e *Engine) scanViewDir(viewDir string) (views []string, partials []string, err error) {
	entries, err := fs.ReadDir(e.config.FS, viewDir)
	if err != nil {
		return nil, nil, err
	}

	for _, f := range entries {
		if !isTemplate(f) {
			continue
		}

		if isPartial(f) {
			partials = append(partials, viewDir+"/"+f.Name())
		} else {
			views = append(views, viewDir+"/"+f.Name())
		}
	}
	return views, partials, nil
}

// listViewDirs returns a list of all view directories other than "shared" or "layouts"
func (e *Engine) listViewDirs() ([]string, error) {
	entries, err := fs.ReadDir(e.config.FS, ".")
	if err != nil {
		return nil, err
	}

	viewDirs := make([]string, 0, len(entries))
	for _, f := range entries {
		if f.IsDir() && f.Name() != "shared" && f.Name() != "layouts" {
			viewDirs = append(viewDirs, f.Name())
		}
	}
	return viewDirs, nil
}

// listPartials returns a list of all partials in the given view directory. A missing
// directory has none.
func (e *Engine) listPartials(viewDir string) ([]string, error) {
	entries, err := fs.ReadDir(e.config.FS, viewDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	partials := make([]string, 0, len(entries))
	for _, f := range entries {
		if isPartial(f) {
			partials = append(partials, viewDir+"/"+f.Name())
		}
	}
	return partials, nil
}

// isTemplate returns true if the path has a .tmpl extension.
func isTemplate(path fs.DirEntry) bool {
	return !path.IsDir() && strings.HasSuffix(path.Name(), Suffix)
}

// isPartial returns true if the path is a partial template file.
// (starts with _ and has a .tmpl extension)
func isPartial(path fs.DirEntry) bool {
	return isTemplate(path) && strings.HasPrefix(path.Name(), "_")
}
