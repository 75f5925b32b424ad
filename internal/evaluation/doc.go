// Package evaluation scores the extractor and the matcher against labelled
// listing cases loaded from YAML.
//
// Extraction items pass when the normalized name sets agree and every
// language matches, are uncertain when only languages differ, and fail
// otherwise. Matcher items feed each expected name straight to the resolver
// and pass when the chosen id is one of the acceptable ids, or when nothing
// is chosen and no id is acceptable.
package evaluation
