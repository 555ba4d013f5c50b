package console

import "context"

type verboseKey struct{}

// SetVerbose marks the context as verbose. Commands thread it through
// so nested calls can decide how chatty to be.
func SetVerbose(parent context.Context, value bool) context.Context {
	return context.WithValue(parent, verboseKey{}, value)
}

func IsVerbose(ctx context.Context) bool {
	value, _ := ctx.Value(verboseKey{}).(bool)
	return value
}
