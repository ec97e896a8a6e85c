package model

import (
	"fmt"
	"strings"
)

// Algorithm selects the goodness-of-fit metric computed for an objective.
// Keep these values stable; they are the tokens accepted in input files.
type Algorithm string

const (
	AlgorithmNashSutcliff Algorithm = "NASH_SUTCLIFF"
	AlgorithmRMSE         Algorithm = "RMSE"
	AlgorithmMAE          Algorithm = "MAE"
)

// Algorithms lists every supported algorithm in declaration order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmNashSutcliff, AlgorithmRMSE, AlgorithmMAE}
}

// ParseAlgorithm matches an algorithm token case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	tok := strings.TrimSpace(s)
	for _, a := range Algorithms() {
		if strings.EqualFold(tok, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown algorithm %q", s)
}
