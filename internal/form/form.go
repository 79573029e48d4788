package form

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownControl = errors.New("form: unknown control")
	ErrNotNullable    = errors.New("form: control is not nullable")
)

// Errors maps an error kind (e.g. "required") to its detail. A nil Errors means valid.
type Errors map[string]any

func (e Errors) Has(kind string) bool {
	_, ok := e[kind]
	return ok
}

// Validator checks a single control.
type Validator func(c *Control) Errors

// GroupValidator checks the group as a whole, for rules spanning several controls.
type GroupValidator func(g *Group) Errors

// Listener is notified after every change to a group, once validation has run.
type Listener func(g *Group)

type Control struct {
	name       string
	value      *string
	initial    string
	nullable   bool
	validators []Validator
	errors     Errors
}

type ControlOption func(*Control)

func WithValidators(validators ...Validator) ControlOption {
	return func(c *Control) {
		c.validators = append(c.validators, validators...)
	}
}

// Nullable allows the control to hold no value at all, as opposed to an empty string.
func Nullable() ControlOption {
	return func(c *Control) {
		c.nullable = true
	}
}

func NewControl(name string, initial string, opts ...ControlOption) *Control {
	c := &Control{name: name, initial: initial}
	for _, opt := range opts {
		opt(c)
	}
	c.set(initial)
	return c
}

func (c *Control) Name() string {
	return c.name
}

// Value returns the current value, or "" when the control is null.
func (c *Control) Value() string {
	if c.value == nil {
		return ""
	}
	return *c.value
}

func (c *Control) IsNull() bool {
	return c.value == nil
}

func (c *Control) Nullable() bool {
	return c.nullable
}

func (c *Control) Errors() Errors {
	return c.errors
}

func (c *Control) Valid() bool {
	return len(c.errors) == 0
}

// Equal reports whether both controls hold the same value. Null only equals null.
func (c *Control) Equal(other *Control) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.value == nil || other.value == nil {
		return c.value == nil && other.value == nil
	}
	return *c.value == *other.value
}

func (c *Control) set(value string) {
	c.value = &value
}

// reset restores the initial value. Nullable controls reset to null.
func (c *Control) reset() {
	if c.nullable {
		c.value = nil
		return
	}
	c.set(c.initial)
}

func (c *Control) validate() {
	var merged Errors
	for _, v := range c.validators {
		for kind, detail := range v(c) {
			if merged == nil {
				merged = Errors{}
			}
			merged[kind] = detail
		}
	}
	c.errors = merged
}

// Group is a set of controls validated together. Every mutation re-runs all control
// validators and then all group validators before listeners are notified.
//
// A Group is not safe for concurrent use.
type Group struct {
	controls   []*Control
	byName     map[string]*Control
	validators []GroupValidator
	errors     Errors
	listeners  []subscription
	nextID     int
}

type subscription struct {
	id       int
	listener Listener
}

func NewGroup(controls []*Control, validators ...GroupValidator) *Group {
	g := &Group{
		controls:   controls,
		byName:     make(map[string]*Control, len(controls)),
		validators: validators,
	}
	for _, c := range controls {
		g.byName[c.name] = c
	}
	g.validate()
	return g
}

// Get returns the named control, or nil if the group has none.
func (g *Group) Get(name string) *Control {
	return g.byName[name]
}

func (g *Group) Has(name string) bool {
	_, ok := g.byName[name]
	return ok
}

func (g *Group) Controls() []*Control {
	return g.controls
}

func (g *Group) SetValue(name string, value string) error {
	c, err := g.lookup(name)
	if err != nil {
		return err
	}
	c.set(value)
	g.changed()
	return nil
}

func (g *Group) SetNull(name string) error {
	c, err := g.lookup(name)
	if err != nil {
		return err
	}
	if !c.nullable {
		return fmt.Errorf("%w: %s", ErrNotNullable, name)
	}
	c.value = nil
	g.changed()
	return nil
}

// Patch sets several values at once and notifies listeners a single time. Nothing is
// changed if any name is unknown.
func (g *Group) Patch(values map[string]string) error {
	for name := range values {
		if _, err := g.lookup(name); err != nil {
			return err
		}
	}
	for name, value := range values {
		g.byName[name].set(value)
	}
	g.changed()
	return nil
}

func (g *Group) Reset() {
	for _, c := range g.controls {
		c.reset()
	}
	g.changed()
}

// Errors returns the group-level errors, not those of individual controls.
func (g *Group) Errors() Errors {
	return g.errors
}

func (g *Group) Valid() bool {
	if len(g.errors) > 0 {
		return false
	}
	for _, c := range g.controls {
		if !c.Valid() {
			return false
		}
	}
	return true
}

// Values returns the value of every non-null control by name.
func (g *Group) Values() map[string]string {
	values := make(map[string]string, len(g.controls))
	for _, c := range g.controls {
		if c.value != nil {
			values[c.name] = *c.value
		}
	}
	return values
}

// Subscribe adds a listener. Listeners are notified in subscription order.
func (g *Group) Subscribe(l Listener) (unsubscribe func()) {
	id := g.nextID
	g.nextID++
	g.listeners = append(g.listeners, subscription{id: id, listener: l})
	return func() {
		for i, s := range g.listeners {
			if s.id == id {
				g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
				return
			}
		}
	}
}

func (g *Group) lookup(name string) (*Control, error) {
	c, ok := g.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownControl, name)
	}
	return c, nil
}

func (g *Group) changed() {
	g.validate()
	for _, s := range g.listeners {
		s.listener(g)
	}
}

func (g *Group) validate() {
	for _, c := range g.controls {
		c.validate()
	}

	var merged Errors
	for _, v := range g.validators {
		for kind, detail := range v(g) {
			if merged == nil {
				merged = Errors{}
			}
			merged[kind] = detail
		}
	}
	g.errors = merged
}
