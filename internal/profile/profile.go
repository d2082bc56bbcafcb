package profile

// Project is a single project listed on a candidate's resume.
type Project struct {
	Name string `json:"name" yaml:"name"`
}

// Candidate holds the skill and project data the question selector draws from.
// It is consumed once, at interview start.
type Candidate struct {
	TechnicalSkills []string  `json:"technical_skills"`
	Projects        []Project `json:"projects"`
}

// ProjectNames returns the project names in resume order.
func (c *Candidate) ProjectNames() []string {
	names := make([]string, 0, len(c.Projects))
	for _, p := range c.Projects {
		names = append(names, p.Name)
	}
	return names
}
