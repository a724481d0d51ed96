package port

import (
	"context"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

// Generator turns a question and its retrieved context into answer
// text. It is an external collaborator of the retrieval core: the
// orchestrator never calls it, and callers must not invoke it with an
// empty context set.
type Generator interface {
	GenerateAnswer(ctx context.Context, question string, candidates []domain.RankedCandidate) (string, error)

	// ModelName returns the name of the generation model.
	ModelName() string
}
