package metrics

// Config
type Config struct {
	// Addr is the listen address of the metrics endpoint.
	Addr string
}

// ServiceInfo labels every reported metric.
type ServiceInfo struct {
	Engine string
}
