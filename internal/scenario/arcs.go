package scenario

// BuiltIn returns predefined incident arcs over the reference services.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"slow-dependency": {
			Name:        "Slow Dependency",
			Description: "The payments provider degrades until its pool saturates, then recovers. Inventory and reviews keep draining throughout.",
			Phases: []Phase{
				{
					Name:        "steady",
					Description: "All services answer at nominal latency.",
					Latencies:   map[string]float64{"payments": 1, "inventory": 1, "reviews": 1},
					Triggers:    []Trigger{{Event: EventTicksElapsed, Value: 30, Next: "degraded"}},
				},
				{
					Name:        "degraded",
					Description: "Payments slows to a crawl and its pool starts filling.",
					Latencies:   map[string]float64{"payments": 10},
					Triggers:    []Trigger{{Event: EventCriticalServices, Value: 1, Next: "saturated"}},
				},
				{
					Name:        "saturated",
					Description: "Payments rejects work; the other pools are untouched.",
					Triggers:    []Trigger{{Event: EventTicksElapsed, Value: 50, Next: "recovery"}},
				},
				{
					Name:        "recovery",
					Description: "The provider is fixed and the backlog drains.",
					Latencies:   map[string]float64{"payments": 1},
				},
			},
		},
		"rolling-degradation": {
			Name:        "Rolling Degradation",
			Description: "Dependencies slow down one after another until two pools are critical, then everything recovers.",
			Phases: []Phase{
				{
					Name:        "steady",
					Description: "All services answer at nominal latency.",
					Latencies:   map[string]float64{"payments": 1, "inventory": 1, "reviews": 1},
					Triggers:    []Trigger{{Event: EventTicksElapsed, Value: 20, Next: "reviews-slow"}},
				},
				{
					Name:        "reviews-slow",
					Description: "The reviews backend degrades.",
					Latencies:   map[string]float64{"reviews": 6},
					Triggers:    []Trigger{{Event: EventTicksElapsed, Value: 40, Next: "inventory-slow"}},
				},
				{
					Name:        "inventory-slow",
					Description: "Inventory follows while reviews is still slow.",
					Latencies:   map[string]float64{"inventory": 8},
					Triggers:    []Trigger{{Event: EventCriticalServices, Value: 2, Next: "recovery"}},
				},
				{
					Name:        "recovery",
					Description: "Both backends recover; payments never noticed.",
					Latencies:   map[string]float64{"reviews": 1, "inventory": 1},
				},
			},
		},
	}
}
