package ir

// Version constants for records and the engine.
const (
	// RecordVersion is the record schema version stored with cached
	// timelines. Bump it when Period or Timeline change shape.
	RecordVersion = "1"

	// EngineVersion is the dasha engine version.
	EngineVersion = "0.1.0"
)
