package lesson

// Section intro paragraphs.
const (
	ConceptTitle = "The Ship Analogy"
	ConceptText  = `The term "Bulkhead" comes from maritime engineering. Ships are divided into watertight compartments. If the hull is breached, water is contained within a single section, preventing the entire ship from sinking.`

	ProblemTitle = "The Problem: Shared Resources"
	ProblemText  = "Without bulkheads, all dependencies typically share a common resource pool (e.g., Tomcat thread pool, DB connections). If one service fails or becomes slow, it can hog all resources, starving the rest of the application."

	SolutionTitle = "The Solution: Isolated Pools"
	SolutionText  = "By partitioning resources into separate pools (Bulkheads), we ensure that a failure in one service (Service B) only fills its own pool. Service A has its own dedicated pool and continues to function normally."

	SimulationTitle = "Live Traffic Dashboard"
	SimulationText  = "Adjust latency to simulate failure. Watch how high latency fills the specific connection pool without affecting neighbor services."

	RealWorldTitle = "Real World Implementations"
	RealWorldText  = "The Bulkhead pattern is applied across the entire stack, from infrastructure to application logic."

	QuizTitle = "Knowledge Check"
	QuizText  = "Test your understanding of System Resilience."
)
