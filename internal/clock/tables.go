package clock

// zoneEntry maps a location-name fragment to an IANA timezone.
type zoneEntry struct {
	name string // matched as a lowercase substring
	zone string
}

// zoneTable resolves well-known location names without touching the
// network. Matching is first-hit in declared order, so city names come
// before the country names that could shadow them.
var zoneTable = []zoneEntry{
	// Cities.
	{"hanoi", "Asia/Ho_Chi_Minh"},
	{"hà nội", "Asia/Ho_Chi_Minh"},
	{"ho chi minh", "Asia/Ho_Chi_Minh"},
	{"sài gòn", "Asia/Ho_Chi_Minh"},
	{"saigon", "Asia/Ho_Chi_Minh"},
	{"da nang", "Asia/Ho_Chi_Minh"},
	{"tokyo", "Asia/Tokyo"},
	{"seoul", "Asia/Seoul"},
	{"beijing", "Asia/Shanghai"},
	{"shanghai", "Asia/Shanghai"},
	{"singapore", "Asia/Singapore"},
	{"bangkok", "Asia/Bangkok"},
	{"london", "Europe/London"},
	{"paris", "Europe/Paris"},
	{"berlin", "Europe/Berlin"},
	{"moscow", "Europe/Moscow"},
	{"new york", "America/New_York"},
	{"los angeles", "America/Los_Angeles"},
	{"sydney", "Australia/Sydney"},
	{"dubai", "Asia/Dubai"},

	// Countries, after the cities they would otherwise shadow.
	{"vietnam", "Asia/Ho_Chi_Minh"},
	{"việt nam", "Asia/Ho_Chi_Minh"},
	{"japan", "Asia/Tokyo"},
	{"korea", "Asia/Seoul"},
	{"china", "Asia/Shanghai"},
	{"thailand", "Asia/Bangkok"},
	{"england", "Europe/London"},
	{"france", "Europe/Paris"},
	{"germany", "Europe/Berlin"},
	{"russia", "Europe/Moscow"},
	{"america", "America/New_York"},
	{"australia", "Australia/Sydney"},
}

// coordEntry holds static coordinates for the remote time-by-position
// fallback.
type coordEntry struct {
	name     string
	lat, lng float64
}

// coordTable covers well-known cities that are not in zoneTable, so an
// unmapped query can still be answered through the remote API.
var coordTable = []coordEntry{
	{"mumbai", 19.0760, 72.8777},
	{"delhi", 28.7041, 77.1025},
	{"jakarta", -6.2088, 106.8456},
	{"manila", 14.5995, 120.9842},
	{"kuala lumpur", 3.1390, 101.6869},
	{"cairo", 30.0444, 31.2357},
	{"istanbul", 41.0082, 28.9784},
	{"rome", 41.9028, 12.4964},
	{"madrid", 40.4168, -3.7038},
	{"amsterdam", 52.3676, 4.9041},
	{"toronto", 43.6532, -79.3832},
	{"chicago", 41.8781, -87.6298},
	{"mexico city", 19.4326, -99.1332},
	{"sao paulo", -23.5505, -46.6333},
}
