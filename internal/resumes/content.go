package resumes

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Content is the canonical structured resume payload rendered on the public
// portfolio page and fed to the assistant prompts.
type Content struct {
	Header         Header          `json:"header"`
	Summary        []string        `json:"summary"`
	Skills         []SkillGroup    `json:"skills"`
	Experience     []Experience    `json:"experience"`
	Projects       []Project       `json:"projects"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
}

// Header holds contact and identity details shown at the top of the page.
type Header struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Location string   `json:"location"`
	Links    []string `json:"links"`
}

// SkillGroup is a named bucket of skills, e.g. "Languages" or "Cloud".
type SkillGroup struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Experience is a work history entry.
type Experience struct {
	Company    string   `json:"company"`
	Role       string   `json:"role"`
	Location   string   `json:"location"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Highlights []string `json:"highlights"`
}

// Project is a notable project entry.
type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Highlights  []string `json:"highlights"`
}

// Education is a degree or program entry.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Location    string `json:"location"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// Certification is a certification entry.
type Certification struct {
	Name    string `json:"name"`
	Issuer  string `json:"issuer"`
	Date    string `json:"date"`
	Expires string `json:"expires"`
}

var datePattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Validate enforces required fields and formatting rules on the content.
func (c Content) Validate() error {
	if strings.TrimSpace(c.Header.Name) == "" {
		return fmt.Errorf("%w: header.name is required", ErrInvalidInput)
	}
	for i, link := range c.Header.Links {
		if !isFullURL(strings.TrimSpace(link)) {
			return fmt.Errorf("%w: header.links[%d] must be a full URL", ErrInvalidInput, i)
		}
	}
	for i, exp := range c.Experience {
		if err := validateDate(exp.Start, fmt.Sprintf("experience[%d].start", i)); err != nil {
			return err
		}
		if err := validateDate(exp.End, fmt.Sprintf("experience[%d].end", i)); err != nil {
			return err
		}
	}
	for i, p := range c.Projects {
		if err := validateDate(p.Start, fmt.Sprintf("projects[%d].start", i)); err != nil {
			return err
		}
		if err := validateDate(p.End, fmt.Sprintf("projects[%d].end", i)); err != nil {
			return err
		}
	}
	for i, edu := range c.Education {
		if err := validateDate(edu.Start, fmt.Sprintf("education[%d].start", i)); err != nil {
			return err
		}
		if err := validateDate(edu.End, fmt.Sprintf("education[%d].end", i)); err != nil {
			return err
		}
	}
	for i, cert := range c.Certifications {
		if err := validateDate(cert.Date, fmt.Sprintf("certifications[%d].date", i)); err != nil {
			return err
		}
		if err := validateDate(cert.Expires, fmt.Sprintf("certifications[%d].expires", i)); err != nil {
			return err
		}
	}
	return nil
}

func isFullURL(value string) bool {
	if value == "" {
		return false
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

func validateDate(value, field string) error {
	if value == "" || value == "Present" {
		return nil
	}
	if !datePattern.MatchString(value) {
		return fmt.Errorf("%w: %s must be YYYY-MM or Present", ErrInvalidInput, field)
	}
	return nil
}
