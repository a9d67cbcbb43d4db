package analysis

import (
	"strings"

	"github.com/dgallion1/docrank/internal/lexicon"
)

// TermOptions sets the weight of terms by the field they come from.
type TermOptions struct {
	JobWeight     float64
	PersonaWeight float64
}

// DefaultTermOptions weights job terms above persona terms, since the job
// describes the actionable need.
func DefaultTermOptions() TermOptions {
	return TermOptions{JobWeight: 1.0, PersonaWeight: 0.7}
}

func (o TermOptions) validate() error {
	// NaN fails both checks.
	if !(o.JobWeight > 0 && o.JobWeight <= 1) {
		return invalidInput("job_weight", "must be in (0, 1]")
	}
	if !(o.PersonaWeight > 0 && o.PersonaWeight <= 1) {
		return invalidInput("persona_weight", "must be in (0, 1]")
	}
	return nil
}

// ExtractTerms derives the weighted vocabulary for a run from the persona and
// job descriptions. A term found in both keeps the higher weight.
func ExtractTerms(pj PersonaJob, norm *lexicon.Normalizer, opts TermOptions) (TermSet, error) {
	if err := validatePersonaJob(pj); err != nil {
		return TermSet{}, err
	}
	if err := opts.validate(); err != nil {
		return TermSet{}, err
	}

	weights := make(map[string]float64)
	add := func(text string, w float64) {
		for _, tok := range norm.Tokens(text) {
			if w > weights[tok] {
				weights[tok] = w
			}
		}
	}
	add(pj.Persona, opts.PersonaWeight)
	add(pj.Job, opts.JobWeight)

	if len(weights) == 0 {
		return TermSet{}, invalidInput("persona_job", "no terms left after stop-word filtering")
	}
	return newTermSet(weights), nil
}

func validatePersonaJob(pj PersonaJob) error {
	if strings.TrimSpace(pj.Persona) == "" {
		return invalidInput("persona", "must not be empty")
	}
	if strings.TrimSpace(pj.Job) == "" {
		return invalidInput("job_to_be_done", "must not be empty")
	}
	if !lexicon.HasText(pj.Persona) {
		return invalidInput("persona", "contains no letters or digits")
	}
	if !lexicon.HasText(pj.Job) {
		return invalidInput("job_to_be_done", "contains no letters or digits")
	}
	return nil
}
