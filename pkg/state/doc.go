/*
Package state provides typed, turn-cached access to scoped state bags.

A BotState binds a ports.StateStore to a scope (user or conversation). During a
turn the bag is loaded once, read and mutated through Property accessors, and
flushed with SaveChanges at the end of the turn. Writes only reach the store when
the bag actually changed.

	userState := state.NewUserState(store)
	profile := state.NewProperty[domain.UserProfile](userState, "UserProfile")

	p, err := profile.Get(ctx, tc, func() domain.UserProfile { return domain.UserProfile{} })
	p.Email = "a@b.com"
	_ = profile.Set(ctx, tc, p)
	_ = userState.SaveChanges(ctx, tc, false)
*/
package state
