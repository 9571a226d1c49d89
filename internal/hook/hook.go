package hook

// Chain composes hooks so that the first hook is the outermost one:
// Chain(a, b)(next) == a(b(next)). Nil hooks are skipped.
func Chain[F any](hooks ...func(next F) F) func(next F) F {
	var nonNil []func(next F) F
	for _, h := range hooks {
		if h != nil {
			nonNil = append(nonNil, h)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	return func(next F) F {
		for i := len(nonNil) - 1; i >= 0; i-- {
			next = nonNil[i](next)
		}
		return next
	}
}

// Prepend puts hooks in front of an existing hook, so they run before it.
func Prepend[F any](existing func(next F) F, hooks ...func(next F) F) func(next F) F {
	all := make([]func(next F) F, 0, len(hooks)+1)
	all = append(all, hooks...)
	return Chain(append(all, existing)...)
}
