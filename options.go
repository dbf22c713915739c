package triplebuffer

import "fmt"

// Option configures a buffer created by New or NewFunc.
type Option func(*config)

type config struct {
	publishRetries int
}

// WithPublishRetries sets how many extra CAS attempts a publish makes after
// losing to the reader before the update is dropped. n must be within
// [0, MaxPublishRetries].
func WithPublishRetries(n int) Option {
	if n < 0 || n > MaxPublishRetries {
		panic(fmt.Sprintf("triplebuffer: publish retries must be in [0, %d], got %d", MaxPublishRetries, n))
	}
	return func(c *config) {
		c.publishRetries = n
	}
}

func applyOptions(opts []Option) config {
	cfg := config{publishRetries: DefaultPublishRetries}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
