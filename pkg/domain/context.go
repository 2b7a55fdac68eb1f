package domain

// Transport describes the host transport at the time of a process call.
type Transport struct {
	Playing       bool    `json:"playing"`
	Tempo         float64 `json:"tempo"`
	TimeSignature [2]int  `json:"time_signature"`
	Position      float64 `json:"position"` // in beats
}

// EngineInfo describes the audio engine configuration.
type EngineInfo struct {
	SampleRate int `json:"sample_rate"`
	BufferSize int `json:"buffer_size"`
}

// CardContext is the read-only context passed to every process call.
// It is a value type: cards receive a copy and cannot affect the caller's.
type CardContext struct {
	CurrentTick   int64      `json:"current_tick"`
	CurrentSample int64      `json:"current_sample"`
	Transport     Transport  `json:"transport"`
	Engine        EngineInfo `json:"engine"`
	ElapsedMs     float64    `json:"elapsed_ms"`
}
