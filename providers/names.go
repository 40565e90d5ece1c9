package providers

const (
	// Identifier for ipstack.com
	NameIPStack = "ipstack"

	// Identifier for MaxMind GeoLite2 databases.
	NameMaxmindLite = "maxmind_lite"
)
