package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/ideaforge/backend/internal/models"
)

// EmbeddingServiceInterface turns text into a vector for similarity search
type EmbeddingServiceInterface interface {
	GenerateEmbedding(text string) (pgvector.Vector, error)
}

// HashEmbedder is a deterministic feature-hashing embedder. Each lowercased
// word and word bigram is hashed into one of models.EmbeddingDimensions
// buckets with a hash-derived sign; the result is L2 normalized.
type HashEmbedder struct{}

func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

func (HashEmbedder) GenerateEmbedding(text string) (pgvector.Vector, error) {
	return pgvector.NewVector(GenerateEmbedding(text)), nil
}

// GenerateEmbedding returns the hashed embedding of text
func GenerateEmbedding(text string) []float32 {
	vec := make([]float32, models.EmbeddingDimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		addFeature(vec, w, 1)
		if i > 0 {
			addFeature(vec, words[i-1]+" "+w, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

func addFeature(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()
	idx := sum % uint64(len(vec))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}
