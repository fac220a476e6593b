package qdrantstore

// Config holds connection settings for the Qdrant client.
type Config struct {
	// Hostname of the Qdrant server, e.g. "localhost".
	Host string

	// gRPC port of the Qdrant server. Defaults to 6334.
	Port int

	// Optional authentication token for secured deployments.
	APIKey string

	// Enable TLS for the gRPC connection.
	UseTLS bool
}

// withDefaults fills in the default gRPC port when none is configured.
func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 6334
	}
	return c
}
