package routing

// DirectionResponse is the driving-direction API envelope. Code 0 means
// success; anything else carries a machine-readable error in Message.
type DirectionResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Route   Route  `json:"route"`
}

// Route holds the route options the API may return. Traoptimal is preferred;
// Trafast is the fallback option some responses carry instead.
type Route struct {
	Traoptimal []RouteOption `json:"traoptimal"`
	Trafast    []RouteOption `json:"trafast"`
}

type RouteOption struct {
	Summary Summary `json:"summary"`
}

// Summary carries the trip totals. Duration is in milliseconds; TollFare is
// unused by the matcher but kept for completeness of the wire format.
type Summary struct {
	DurationMs int64 `json:"duration"`
	DistanceM  int64 `json:"distance"`
	TollFare   int64 `json:"tollFare"`
}

// best returns the first usable route option, or false if the response
// carries none.
func (r Route) best() (RouteOption, bool) {
	if len(r.Traoptimal) > 0 {
		return r.Traoptimal[0], true
	}
	if len(r.Trafast) > 0 {
		return r.Trafast[0], true
	}
	return RouteOption{}, false
}
