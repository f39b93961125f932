package contract

// Sentinel markers of the dialogue-agent text protocol. The model embeds them
// in otherwise free-form replies; they are parsed into AgentReply exactly once
// at the model-client boundary and written back out only when feeding lookup
// results to the model.
const (
	// LookupPrefix opens a catalog lookup request ("SQL: select ...").
	LookupPrefix = "SQL:"
	// LookupResultPrefix opens the engine's answer to a lookup.
	LookupResultPrefix = "SQL Response:"
	// EndCallSentinel at the end of a reply means the agent wants to hang up
	// after speaking. It is stripped before anything is spoken.
	EndCallSentinel = "EXIT"
)
