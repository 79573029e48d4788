package auth

import "conduitauth/internal/form"

// Match reports {"notMatch": true} at the group level when the two controls differ.
// It is a no-op in Login mode, and it stays quiet while the match control has errors
// of its own. A blank match control still differs from a non-blank password.
func Match(mode Mode, controlName, matchControlName string) form.GroupValidator {
	return func(g *form.Group) form.Errors {
		if mode == Login {
			return nil
		}

		control := g.Get(controlName)
		matchControl := g.Get(matchControlName)

		if matchControl.Valid() && !control.Equal(matchControl) {
			return form.Errors{"notMatch": true}
		}
		return nil
	}
}
