package faq

// Config holds runtime knobs for the FAQ service.
type Config struct {
	LexicalWeight     float64
	SemanticWeight    float64
	FuzzyThreshold    float64
	SemanticThreshold float64
	DefaultTopK       int
	MaxTopK           int
	MinQuestionLen    int
	MinAnswerLen      int
	MaxFeatures       int
	DefaultAddedBy    string
	TopTrending       int
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		LexicalWeight:     0.3,
		SemanticWeight:    0.7,
		FuzzyThreshold:    0.85,
		SemanticThreshold: 0.90,
		DefaultTopK:       3,
		MaxTopK:           5,
		MinQuestionLen:    10,
		MinAnswerLen:      20,
		MaxFeatures:       defaultMaxFeatures,
		DefaultAddedBy:    "admin",
		TopTrending:       10,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.LexicalWeight == 0 && c.SemanticWeight == 0 {
		c.LexicalWeight, c.SemanticWeight = def.LexicalWeight, def.SemanticWeight
	}
	if c.FuzzyThreshold <= 0 {
		c.FuzzyThreshold = def.FuzzyThreshold
	}
	if c.SemanticThreshold <= 0 {
		c.SemanticThreshold = def.SemanticThreshold
	}
	if c.MaxTopK <= 0 {
		c.MaxTopK = def.MaxTopK
	}
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = def.DefaultTopK
	}
	if c.DefaultTopK > c.MaxTopK {
		c.DefaultTopK = c.MaxTopK
	}
	if c.MinQuestionLen <= 0 {
		c.MinQuestionLen = def.MinQuestionLen
	}
	if c.MinAnswerLen <= 0 {
		c.MinAnswerLen = def.MinAnswerLen
	}
	if c.MaxFeatures <= 0 {
		c.MaxFeatures = def.MaxFeatures
	}
	if c.DefaultAddedBy == "" {
		c.DefaultAddedBy = def.DefaultAddedBy
	}
	if c.TopTrending <= 0 {
		c.TopTrending = def.TopTrending
	}
	return c
}
