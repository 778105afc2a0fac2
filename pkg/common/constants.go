package common

const (
	RedisStreamAnalysisRequest = "insight.analysis.request"

	RedisStreamGroup    = "insight-group"
	RedisStreamConsumer = "insight-consumer"
)
