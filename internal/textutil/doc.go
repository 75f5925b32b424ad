// Package textutil holds the string rules shared by catalog search, the
// resolvers and evaluation.
//
// Normalize is the single name-comparison rule: diacritics folded, lower-cased,
// punctuation collapsed to single spaces. SequenceMatcher implements the
// Ratcliff/Obershelp ratio, including the autojunk rule for long inputs, and
// the catalog cutoffs are expressed in that ratio.
package textutil
