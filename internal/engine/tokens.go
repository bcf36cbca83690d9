package engine

import (
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates how many LLM tokens a text occupies.
type TokenCounter interface {
	Count(text string) int
}

// tiktokenCounter counts with the model's real BPE encoding.
type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// heuristicCounter approximates one token per four characters. Used when
// the tiktoken encoding cannot be loaded (e.g. no network access).
type heuristicCounter struct{}

func (heuristicCounter) Count(text string) int {
	return utf8.RuneCountInString(text) / 4
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// NewTokenCounter returns a counter for the given model, falling back to
// cl100k_base and then to the character heuristic.
func NewTokenCounter(model string) TokenCounter {
	if enc, err := tiktoken.EncodingForModel(model); err == nil {
		return &tiktokenCounter{enc: enc}
	}
	if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
		return &tiktokenCounter{enc: enc}
	}
	return heuristicCounter{}
}
