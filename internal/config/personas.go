package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Persona is a named system prompt
type Persona struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
	Model        string `json:"model,omitempty"` // Preferred model (optional)
}

// PersonaConfig stores all personas
type PersonaConfig struct {
	Personas       []Persona `json:"personas"`
	DefaultPersona string    `json:"default_persona,omitempty"`
}

// DefaultPersonas returns pre-configured personas
func DefaultPersonas() []Persona {
	return []Persona{
		{
			Name:         "default",
			Description:  "No system prompt",
			SystemPrompt: "",
		},
		{
			Name:        "coder",
			Description: "Expert programmer assistant",
			SystemPrompt: `You are an expert software engineer. You should:
- Answer with working code and short explanations
- Point out bugs, edge cases and security issues
- Prefer the idioms of the language in question
- Ask for missing context instead of guessing`,
		},
		{
			Name:        "writer",
			Description: "Creative writing assistant",
			SystemPrompt: `You are a creative writing assistant. Your goal is to:
- Help with creative writing, storytelling, and content creation
- Provide suggestions that enhance narrative flow
- Maintain consistent tone and style
- Offer multiple alternatives when asked
- Be concise but evocative in descriptions`,
		},
		{
			Name:        "analyst",
			Description: "Data and business analyst",
			SystemPrompt: `You are a data and business analyst. You should:
- Analyze information methodically
- Present findings in structured formats
- Use data to support conclusions
- Consider multiple perspectives
- Highlight key insights and actionable recommendations`,
		},
		{
			Name:        "teacher",
			Description: "Patient educational assistant",
			SystemPrompt: `You are a patient and thorough teacher. When explaining:
- Break down complex topics into simple parts
- Use analogies and examples
- Check understanding progressively
- Encourage questions
- Adapt explanations to the learner's level`,
		},
	}
}

// GetPersonasPath returns the path to the personas file
func GetPersonasPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "personas.json"), nil
}

// LoadPersonas loads the persona configuration
func LoadPersonas() (*PersonaConfig, error) {
	path, err := GetPersonasPath()
	if err != nil {
		return nil, err
	}
	return LoadPersonasFile(path)
}

// LoadPersonasFile loads personas from path, merged over the built-in ones
func LoadPersonasFile(path string) (*PersonaConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &PersonaConfig{
				Personas:       DefaultPersonas(),
				DefaultPersona: "default",
			}, nil
		}
		return nil, fmt.Errorf("failed to read personas: %w", err)
	}

	var pc PersonaConfig
	if err := json.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}

	for _, p := range pc.Personas {
		if err := ValidatePersona(p); err != nil {
			return nil, fmt.Errorf("persona '%s': %w", p.Name, err)
		}
	}

	// Merge with defaults (keep user customizations)
	pc.Personas = mergePersonas(DefaultPersonas(), pc.Personas)

	return &pc, nil
}

// GetPersona loads the personas and returns the one named name
func GetPersona(name string) (*Persona, error) {
	pc, err := LoadPersonas()
	if err != nil {
		return nil, err
	}
	return pc.Find(name)
}

// Find returns the persona with the given name
func (pc *PersonaConfig) Find(name string) (*Persona, error) {
	for i := range pc.Personas {
		if pc.Personas[i].Name == name {
			p := pc.Personas[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("persona '%s' not found", name)
}

// Names returns the names of all personas
func (pc *PersonaConfig) Names() []string {
	names := make([]string, len(pc.Personas))
	for i, p := range pc.Personas {
		names[i] = p.Name
	}
	return names
}

func mergePersonas(defaults, custom []Persona) []Persona {
	result := make([]Persona, len(defaults))
	copy(result, defaults)

	for _, cp := range custom {
		found := false
		for i, dp := range result {
			if dp.Name == cp.Name {
				result[i] = cp
				found = true
				break
			}
		}
		if !found {
			result = append(result, cp)
		}
	}

	return result
}

// Validation constants
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 200
	MaxPromptLength      = 32 * 1024 // 32KB
)

// ValidatePersona validates a persona's fields
func ValidatePersona(p Persona) error {
	fieldErrors := make(map[string]string)

	if p.Name == "" {
		fieldErrors["name"] = "name is required"
	} else if len(p.Name) > MaxNameLength {
		fieldErrors["name"] = fmt.Sprintf("name too long (max %d characters)", MaxNameLength)
	} else if !isValidPersonaName(p.Name) {
		fieldErrors["name"] = "name must contain only alphanumeric characters, underscores, and hyphens"
	}

	if len(p.Description) > MaxDescriptionLength {
		fieldErrors["description"] = fmt.Sprintf("description too long (max %d characters)", MaxDescriptionLength)
	}

	if len(p.SystemPrompt) > MaxPromptLength {
		fieldErrors["system_prompt"] = fmt.Sprintf("system prompt too long (max %d characters)", MaxPromptLength)
	}

	if len(fieldErrors) > 0 {
		return fmt.Errorf("validation failed: %v", fieldErrors)
	}

	return nil
}

func isValidPersonaName(name string) bool {
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-') {
			return false
		}
	}
	return true
}
