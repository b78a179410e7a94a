package core

import "context"

type clientKey struct{}

// Client identifies who started a job. The web layer fills it in per request;
// the CLI leaves it empty.
type Client struct {
	IP        string
	UserAgent string
	// Origin names the surface that started the job: "http" or "cli".
	Origin string
}

// WithClient attaches c to ctx for job logging.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFrom returns the client stored by WithClient, or the zero Client.
func ClientFrom(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}

// logAttrs returns slog attributes for the non-empty fields of c.
func (c Client) logAttrs() []any {
	var attrs []any
	if c.Origin != "" {
		attrs = append(attrs, "origin", c.Origin)
	}
	if c.IP != "" {
		attrs = append(attrs, "client_ip", c.IP)
	}
	if c.UserAgent != "" {
		attrs = append(attrs, "user_agent", c.UserAgent)
	}
	return attrs
}
