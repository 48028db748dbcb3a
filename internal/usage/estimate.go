package usage

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator counts tokens in text for calls whose provider did not report
// usage.
type Estimator interface {
	Count(text string) int64
}

// TokenEstimator estimates token counts with the cl100k_base BPE
// encoding. Encoding setup is deferred to first use; if the tables cannot
// be loaded it falls back to a characters/4 approximation.
type TokenEstimator struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// Count returns the estimated token count of text.
func (e *TokenEstimator) Count(text string) int64 {
	e.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			e.enc = enc
		}
	})
	if e.enc == nil {
		return int64(len(text) / 4)
	}
	return int64(len(e.enc.Encode(text, nil, nil)))
}
