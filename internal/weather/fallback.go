package weather

import (
	"math/rand/v2"

	"task-manager/internal/model"
)

// Fallback bounds: temperatures are drawn from [FallbackMinTemp, FallbackMaxTemp).
const (
	FallbackMinTemp = 10
	FallbackMaxTemp = 40
)

// Fallback returns a plausible substitute used when the provider fails.
// A nil rng uses the global source.
func Fallback(rng *rand.Rand) model.Weather {
	intN := rand.IntN
	float := rand.Float64
	if rng != nil {
		intN = rng.IntN
		float = rng.Float64
	}
	condition := model.ConditionCloudy
	if float() > 0.5 {
		condition = model.ConditionSunny
	}
	return model.Weather{
		Temp:      FallbackMinTemp + intN(FallbackMaxTemp-FallbackMinTemp),
		Condition: condition,
	}
}
