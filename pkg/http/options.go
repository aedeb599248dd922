package http

type HttpOpts func(*httpConfig)

// WithTimeouts overrides every non-zero deadline in t
func WithTimeouts(t Timeouts) HttpOpts {
	return func(c *httpConfig) {
		override(&c.timeouts.Request, t.Request)
		override(&c.timeouts.Connect, t.Connect)
		override(&c.timeouts.KeepAlive, t.KeepAlive)
		override(&c.timeouts.TLSHandshake, t.TLSHandshake)
		override(&c.timeouts.ResponseHeader, t.ResponseHeader)
		override(&c.timeouts.IdleConn, t.IdleConn)
	}
}

// WithConnectionPool sizes the idle pool; non-positive values keep the defaults
func WithConnectionPool(maxIdle, maxIdlePerHost int) HttpOpts {
	return func(c *httpConfig) {
		if maxIdle > 0 {
			c.maxIdleConns = maxIdle
		}
		if maxIdlePerHost > 0 {
			c.maxIdleConnsPerHost = maxIdlePerHost
		}
	}
}

func WithTransport(transport TransportFunc) HttpOpts {
	return func(c *httpConfig) {
		c.transports = append(c.transports, transport)
	}
}

func override[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
