package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// TurnsSummaryRequest requests aggregated conversation turn metrics.

type TurnsSummaryRequest struct {
	Range TimeRange `json:"range"`
}

type TurnsSummary struct {
	TotalTurns int `json:"total_turns"`

	AnsweredTurns      int `json:"answered_turns"`
	NoSpeechTurns      int `json:"no_speech_turns"`
	SttFailedTurns     int `json:"stt_failed_turns"`
	LlmFailedTurns     int `json:"llm_failed_turns"`
	TtsFailedTurns     int `json:"tts_failed_turns"`
	PublishFailedTurns int `json:"publish_failed_turns"`
	StoreFailedTurns   int `json:"store_failed_turns"`

	DistinctCalls int `json:"distinct_calls"`

	// AnsweredRate is AnsweredTurns / TotalTurns, 0 when there are no turns.
	AnsweredRate float64 `json:"answered_rate"`
}
