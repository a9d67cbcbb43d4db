// Package request loads analysis requests from YAML or JSON files in the
// challenge input layout.
package request

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docrank/internal/analysis"
)

type Document struct {
	Filename string `yaml:"filename"`
	Title    string `yaml:"title"`
}

type Persona struct {
	Role        string `yaml:"role"`
	Description string `yaml:"description"`
}

type Job struct {
	Task string `yaml:"task"`
}

// Request names the documents to analyze and who is reading them for what.
type Request struct {
	ChallengeInfo map[string]any `yaml:"challenge_info,omitempty"`
	Documents     []Document     `yaml:"documents"`
	Persona       Persona        `yaml:"persona"`
	JobToBeDone   Job            `yaml:"job_to_be_done"`
}

// Parse decodes a request. JSON input is accepted since it is valid YAML.
func Parse(data []byte) (*Request, error) {
	var req Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// Load reads and parses a request file.
func Load(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return Parse(data)
}

func (r *Request) Validate() error {
	if len(r.Documents) == 0 {
		return fmt.Errorf("request lists no documents")
	}
	for i, d := range r.Documents {
		if strings.TrimSpace(d.Filename) == "" {
			return fmt.Errorf("documents[%d]: filename is required", i)
		}
	}
	return nil
}

// PersonaJob joins role and description into the persona text.
func (r *Request) PersonaJob() analysis.PersonaJob {
	persona := strings.TrimSpace(r.Persona.Role + " " + r.Persona.Description)
	return analysis.PersonaJob{Persona: persona, Job: strings.TrimSpace(r.JobToBeDone.Task)}
}

// Paths resolves document filenames against dir.
func (r *Request) Paths(dir string) []string {
	out := make([]string, len(r.Documents))
	for i, d := range r.Documents {
		if filepath.IsAbs(d.Filename) {
			out[i] = d.Filename
		} else {
			out[i] = filepath.Join(dir, d.Filename)
		}
	}
	return out
}
