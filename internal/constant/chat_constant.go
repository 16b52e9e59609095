package constant

// FallbackAnswer is recorded as the assistant turn when a query ends in a
// failure outcome. Clients render it verbatim.
const FallbackAnswer = "⚠️ Could not retrieve a response (server overload or API error)."

// Chat module names used in log entries.
const (
	LogModuleChat  = "CHAT"
	LogModuleStore = "STORE"
	LogModuleUsage = "USAGE"
)
