package lesson

// Card is one real-world application of the pattern.
type Card struct {
	ID      int
	Title   string
	Summary string
	Detail  string
	Layer   string
}

// RealWorldCards returns the accordion content.
func RealWorldCards() []Card {
	return []Card{
		{
			ID:      1,
			Title:   "Kubernetes Resource Quotas",
			Summary: `Prevents one "noisy neighbor" container from starving others on the same node.`,
			Detail:  "In Kubernetes, you can set ResourceQuotas and LimitRanges per namespace. This acts as a bulkhead. If one deployment has a memory leak or CPU spike, the K8s scheduler throttles it based on its limits, ensuring other pods on the same node keep running smoothly.",
			Layer:   "Infrastructure Layer",
		},
		{
			ID:      2,
			Title:   "Database Connection Pools",
			Summary: "Separate pools for read vs. write operations, or critical vs. background jobs.",
			Detail:  `Advanced applications often maintain distinct connection pools for different types of operations. For example, a "Report Generation" feature might have a pool max of 2 connections, while the "User Login" feature has 50. If reporting queries hang, they only exhaust their tiny pool, leaving login unaffected.`,
			Layer:   "Persistence Layer",
		},
		{
			ID:      3,
			Title:   "Hystrix / Resilience4j",
			Summary: "Application-level libraries that implement thread pool isolation for external calls.",
			Detail:  `These libraries are the classic implementation of Bulkheads in Java/Microservices. They wrap external API calls in commands. Each command type gets its own thread pool. If the "ProductRecommendations" service hangs, its thread pool fills up and rejects requests immediately (Fail Fast), protecting the calling service threads.`,
			Layer:   "Application Layer",
		},
	}
}

// Accordion shows at most one expanded card.
type Accordion struct {
	cards []Card
	open  int // card ID, 0 when all are closed
}

// NewAccordion returns an accordion over the real-world cards, all closed.
func NewAccordion() *Accordion {
	return &Accordion{cards: RealWorldCards()}
}

func (a *Accordion) Cards() []Card { return a.cards }

// Toggle opens card id and closes the others, or closes it if already open.
func (a *Accordion) Toggle(id int) {
	if a.open == id {
		a.open = 0
		return
	}
	for _, c := range a.cards {
		if c.ID == id {
			a.open = id
			return
		}
	}
}

// Open returns the expanded card ID, or 0.
func (a *Accordion) Open() int { return a.open }

// IsOpen reports whether card id is expanded.
func (a *Accordion) IsOpen(id int) bool { return id != 0 && a.open == id }
