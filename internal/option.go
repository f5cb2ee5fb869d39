package internal

// Option configures Run before the server and vault backend are built.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the loaded application configuration. Run fails
// without one.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
