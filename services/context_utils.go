package services

import "context"

// persistentContext detaches side-effect work (notification delivery) from
// the request context so a client disconnect does not cancel it.
func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
