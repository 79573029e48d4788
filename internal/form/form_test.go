package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroup() *Group {
	return NewGroup([]*Control{
		NewControl("email", "", WithValidators(Required, Email)),
		NewControl("nickname", "", Nullable()),
	})
}

func TestNewGroupValidatesInitialValues(t *testing.T) {
	g := newTestGroup()

	assert.True(t, g.Get("email").Errors().Has("required"))
	assert.False(t, g.Valid())
	assert.Nil(t, g.Get("nickname").Errors())
	assert.False(t, g.Get("nickname").IsNull())
}

func TestSetValueRevalidates(t *testing.T) {
	g := newTestGroup()

	require.NoError(t, g.SetValue("email", "not an email"))
	assert.Equal(t, Errors{"email": true}, g.Get("email").Errors())

	require.NoError(t, g.SetValue("email", "jake@jake.jake"))
	assert.Nil(t, g.Get("email").Errors())
	assert.True(t, g.Valid())
}

func TestUnknownControl(t *testing.T) {
	g := newTestGroup()

	assert.ErrorIs(t, g.SetValue("username", "jake"), ErrUnknownControl)
	assert.ErrorIs(t, g.SetNull("username"), ErrUnknownControl)

	err := g.Patch(map[string]string{"email": "jake@jake.jake", "username": "jake"})
	assert.ErrorIs(t, err, ErrUnknownControl)
	assert.Equal(t, "", g.Get("email").Value(), "patch must not apply partially")
	assert.Nil(t, g.Get("username"))
}

func TestSetNull(t *testing.T) {
	g := newTestGroup()

	require.NoError(t, g.SetNull("nickname"))
	assert.True(t, g.Get("nickname").IsNull())
	assert.Equal(t, "", g.Get("nickname").Value())
	assert.NotContains(t, g.Values(), "nickname")

	assert.ErrorIs(t, g.SetNull("email"), ErrNotNullable)
}

func TestReset(t *testing.T) {
	g := newTestGroup()
	require.NoError(t, g.Patch(map[string]string{"email": "jake@jake.jake", "nickname": "jj"}))

	g.Reset()

	assert.Equal(t, "", g.Get("email").Value())
	assert.True(t, g.Get("nickname").IsNull())
	assert.True(t, g.Get("email").Errors().Has("required"))
}

func TestGroupValidatorRunsAfterControls(t *testing.T) {
	var sawEmailErrors Errors
	g := NewGroup([]*Control{NewControl("email", "", WithValidators(Required))}, func(g *Group) Errors {
		sawEmailErrors = g.Get("email").Errors()
		if g.Get("email").Value() == "taken@jake.jake" {
			return Errors{"taken": true}
		}
		return nil
	})
	assert.True(t, sawEmailErrors.Has("required"))

	require.NoError(t, g.SetValue("email", "taken@jake.jake"))
	assert.Nil(t, sawEmailErrors)
	assert.Equal(t, Errors{"taken": true}, g.Errors())
	assert.False(t, g.Valid())
}

func TestSubscribe(t *testing.T) {
	g := newTestGroup()

	calls := 0
	unsubscribe := g.Subscribe(func(*Group) { calls++ })

	require.NoError(t, g.SetValue("email", "jake@jake.jake"))
	require.NoError(t, g.Patch(map[string]string{"email": "a@b.c", "nickname": "x"}))
	assert.Equal(t, 2, calls)

	unsubscribe()
	require.NoError(t, g.SetValue("email", "jake@jake.jake"))
	assert.Equal(t, 2, calls)
}

func TestSubscribeNotifiesInOrder(t *testing.T) {
	g := newTestGroup()

	var order []string
	g.Subscribe(func(*Group) { order = append(order, "first") })
	unsubscribe := g.Subscribe(func(*Group) { order = append(order, "second") })
	g.Subscribe(func(*Group) { order = append(order, "third") })

	require.NoError(t, g.SetValue("email", "jake@jake.jake"))
	assert.Equal(t, []string{"first", "second", "third"}, order)

	unsubscribe()
	unsubscribe()
	order = nil
	require.NoError(t, g.SetValue("email", "jake@jake.jake"))
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestUnsubscribeDuringNotify(t *testing.T) {
	g := newTestGroup()

	var calls []string
	var unsubscribe func()
	unsubscribe = g.Subscribe(func(*Group) {
		calls = append(calls, "once")
		unsubscribe()
	})
	g.Subscribe(func(*Group) { calls = append(calls, "always") })

	require.NoError(t, g.SetValue("email", "a@b.c"))
	require.NoError(t, g.SetValue("email", "a@b.c"))
	assert.Equal(t, []string{"once", "always", "always"}, calls)
}

func TestControlEqual(t *testing.T) {
	a := NewControl("a", "x", Nullable())
	b := NewControl("b", "x", Nullable())
	assert.True(t, a.Equal(b))

	b.set("y")
	assert.False(t, a.Equal(b))

	a.value, b.value = nil, nil
	assert.True(t, a.Equal(b))

	b.set("")
	assert.False(t, a.Equal(b))
}

func TestEmail(t *testing.T) {
	for value, valid := range map[string]bool{
		"":               true,
		"jake@jake.jake": true,
		"jake":           false,
		"jake@":          false,
		"@jake.jake":     false,
	} {
		c := NewControl("email", value)
		assert.Equal(t, valid, Email(c) == nil, "value %q", value)
	}
}
