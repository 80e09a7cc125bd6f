package pool

// AddressStats breaks down one address's connections by state/health.
type AddressStats struct {
	Idle      int
	InUse     int
	Degraded  int
	Unhealthy int
}

// Stats is a snapshot of the pool's size across all addresses.
type Stats struct {
	TotalIdle  int
	TotalInUse int
	PerAddress map[string]AddressStats
}
