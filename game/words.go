package game

import (
	"errors"
	"math/rand"
	"unicode"
)

// DefaultWords is the built-in word list. Lowercase only; multi-word phrases
// are allowed and compared case-insensitively like single words.
var DefaultWords = []string{
	"apple", "banana", "car", "dog", "house", "tree", "computer", "rocket",
	"sun", "moon", "star", "flower", "cat", "elephant", "guitar", "book",
	"bicycle", "pizza", "castle", "mountain", "river", "bridge", "train",
	"airplane", "ladder", "candle", "mirror", "umbrella", "penguin", "whale",
	"snowman", "lighthouse", "volcano", "tornado", "spider web", "hot dog",
	"ice cream", "traffic light", "shooting star", "treasure chest",
}

// Bank is a fixed set of candidate secret words.
type Bank struct {
	words []string
}

// NewBank returns a Bank over words. An empty list is a configuration error;
// callers should treat it as fatal at startup.
func NewBank(words []string) (*Bank, error) {
	if len(words) == 0 {
		return nil, errors.New("word bank cannot be empty")
	}
	return &Bank{words: words}, nil
}

// Pick returns a word drawn uniformly at random.
func (b *Bank) Pick() string {
	return b.words[rand.Intn(len(b.words))]
}

// Mask hides every letter of word behind an underscore while preserving its
// length and word boundaries, so guessers see shape but never letter identity.
func Mask(word string) string {
	masked := []rune(word)
	for i, r := range masked {
		if !unicode.IsSpace(r) {
			masked[i] = '_'
		}
	}
	return string(masked)
}
