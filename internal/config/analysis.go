package config

import "shopkeywords-engine/internal/rank"

// AnalyzerOptions maps the analysis section onto rank.Options. Extra banned
// words are added to the default set.
func (c Config) AnalyzerOptions() rank.Options {
	w := c.Analysis.Weights
	return rank.Options{
		Weights: rank.Weights{
			TitleNoun:   w.TitleNoun,
			TitleProper: w.TitleProper,
			TitlePhrase: w.TitlePhrase,
			Base:        w.Base,
		},
		Banned: rank.DefaultBanned.With(c.Analysis.ExtraBanned...),
	}
}
