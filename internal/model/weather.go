package model

import "strings"

// Condition is the coarse sky condition attached to a task.
type Condition string

const (
	ConditionSunny  Condition = "sunny"
	ConditionCloudy Condition = "cloudy"
)

// Weather is the snapshot stored on a task.
type Weather struct {
	Temp      int       `json:"temp"`
	Condition Condition `json:"condition"`
}

// ClassifyCondition maps a provider description to a Condition.
func ClassifyCondition(text string) Condition {
	if strings.Contains(strings.ToLower(text), "sun") {
		return ConditionSunny
	}
	return ConditionCloudy
}
