package translate

const (
	ModelOpus   = "claude-3-opus-20240229"
	ModelSonnet = "claude-3-sonnet-20240229"
	ModelHaiku  = "claude-3-haiku-20240307"
)

// USD per million tokens.
type price struct {
	input  float64
	output float64
}

var prices = map[string]price{
	ModelOpus:   {input: 15, output: 75},
	ModelSonnet: {input: 3, output: 15},
	ModelHaiku:  {input: 0.25, output: 1.25},
}

// CostUSD returns what a request with the given usage costs. Unknown models
// cost nothing.
func CostUSD(model string, inputTokens, outputTokens int) float64 {
	p, ok := prices[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1e6*p.input + float64(outputTokens)/1e6*p.output
}
