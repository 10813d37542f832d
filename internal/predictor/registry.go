package predictor

// #region registry
// All returns the nine library predictors in voting order.
func All() []Predictor {
	return []Predictor{
		New(FreqRebalance, FreqRebalanceFunc),
		New(Markov, MarkovFunc),
		New(NeoPattern, NeoPatternFunc),
		New(DeepAnalysis, DeepAnalysisFunc),
		New(Bridge, BridgeFunc),
		New(BasicPattern, BasicPatternFunc),
		New(Advanced, AdvancedPatternFunc),
		New(Adaptive, AdaptivePatternFunc),
		NewMeta(DefaultMetaMembers()),
	}
}

// IDs lists the ids of ps in order.
func IDs(ps []Predictor) []ID {
	out := make([]ID, len(ps))
	for i, p := range ps {
		out[i] = p.ID()
	}
	return out
}

// #endregion registry
