package vision

import (
	"context"
)

// Image is a captured bitmap in a provider-agnostic form.
type Image struct {
	Data      []byte
	MediaType string // e.g. "image/jpeg"
}

// IdentificationPrompt is the fixed instructional prompt sent with every
// image. The reply is expected to contain exactly the two labeled fields
// that parse.Parse extracts.
const IdentificationPrompt = `Identify the subject of this image (plant, flower, tree or insect) and write a fun fact of two sentences about it.

Respond ONLY in the following format (with no other text):
NAME: [name of the subject]
FACT: [fun fact in two sentences]

If you cannot confidently identify the subject, answer "Unidentifiable subject" as the name.`

// Identification is the structured outcome of one identification attempt.
type Identification struct {
	Name     string
	Fact     string
	Provider string
	Model    string
	Degraded bool // parser fell back to raw-text heuristics
}

// Provider is the contract for any vision model backend. Identify sends one
// image plus the instructional prompt and returns the model's raw text reply.
// Implementations never panic past this boundary; failures come back as a
// classified *IdentificationError.
type Provider interface {
	Identify(ctx context.Context, image Image) (string, error)
}
