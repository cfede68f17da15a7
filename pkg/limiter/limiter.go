package limiter

// Limiter marks providers that wait on a shared rate limit before each call.
type Limiter interface {
	limiterSetup()
}
