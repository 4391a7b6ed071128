package registry

import "fmt"

// DuplicateError reports an Add against a name that is already
// registered. The existing entry is attached so callers can show it.
type DuplicateError struct {
	Name     string
	Existing Entry
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("command %q already exists in the registry", e.Name)
}

// AddParams are the inputs to a registry mutation.
type AddParams struct {
	Name        string
	Description string
	Permission  string
	RiskLevel   string
	RiskReason  string
}

// Add validates params, appends the new entry, and persists the registry
// at path. On any validation failure nothing is written. The returned
// entry is the persisted form, color hint included.
func Add(path string, p AddParams) (*Entry, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("command name is required")
	}

	perm, err := ParsePermission(p.Permission)
	if err != nil {
		return nil, err
	}
	level, err := ParseRiskLevel(p.RiskLevel)
	if err != nil {
		return nil, err
	}

	reason := p.RiskReason
	if reason == "" {
		reason = "No reason provided"
	}

	r := Load(path)
	if existing, ok := r.Commands[p.Name]; ok {
		return nil, &DuplicateError{Name: p.Name, Existing: existing}
	}

	entry := Entry{
		Name:        p.Name,
		Description: p.Description,
		Permission:  perm,
		Risk: Risk{
			Level:  level,
			Color:  level.Color(),
			Reason: reason,
		},
	}

	r.Commands[p.Name] = entry
	if err := Save(r, path); err != nil {
		return nil, fmt.Errorf("save registry: %w", err)
	}
	return &entry, nil
}
