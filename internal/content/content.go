// Package content loads the portfolio shown next to the contact form.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

//go:embed portfolio.yaml
var defaultPortfolio []byte

// CategoryAll disables the project category filter
const CategoryAll = "All"

var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type Profile struct {
	Name     string `yaml:"name" json:"name" validate:"required"`
	Headline string `yaml:"headline" json:"headline" validate:"required"`
	Image    string `yaml:"image" json:"image,omitempty"`
}

type Skill struct {
	Title       string `yaml:"title" json:"title" validate:"required"`
	Description string `yaml:"description" json:"description"`
}

type Experience struct {
	Title        string   `yaml:"title" json:"title" validate:"required"`
	Company      string   `yaml:"company" json:"company" validate:"required"`
	Location     string   `yaml:"location" json:"location"`
	Period       string   `yaml:"period" json:"period" validate:"required"`
	Description  string   `yaml:"description" json:"description"`
	Achievements []string `yaml:"achievements" json:"achievements"`
}

type Education struct {
	Degree       string   `yaml:"degree" json:"degree" validate:"required"`
	Institution  string   `yaml:"institution" json:"institution" validate:"required"`
	Location     string   `yaml:"location" json:"location"`
	Period       string   `yaml:"period" json:"period" validate:"required"`
	Description  string   `yaml:"description" json:"description"`
	Achievements []string `yaml:"achievements" json:"achievements"`
}

type Project struct {
	ID              int      `yaml:"id" json:"id" validate:"required,gt=0"`
	Title           string   `yaml:"title" json:"title" validate:"required"`
	Category        string   `yaml:"category" json:"category" validate:"required"`
	Image           string   `yaml:"image" json:"image,omitempty"`
	Description     string   `yaml:"description" json:"description" validate:"required"`
	LongDescription string   `yaml:"long_description" json:"long_description"`
	Technologies    []string `yaml:"technologies" json:"technologies"`
	Features        []string `yaml:"features" json:"features"`
	GitHub          string   `yaml:"github" json:"github,omitempty" validate:"omitempty,url"`
	Demo            string   `yaml:"demo" json:"demo,omitempty" validate:"omitempty,url"`
}

type ContactInfo struct {
	Email    string `yaml:"email" json:"email" validate:"required,email"`
	Phone    string `yaml:"phone" json:"phone,omitempty"`
	Location string `yaml:"location" json:"location,omitempty"`
}

type Link struct {
	Label string `yaml:"label" json:"label" validate:"required"`
	URL   string `yaml:"url" json:"url" validate:"required,url"`
}

// Portfolio is the full page content. AboutHTML is rendered from About on load.
type Portfolio struct {
	Profile    Profile      `yaml:"profile" json:"profile"`
	About      string       `yaml:"about" json:"about"`
	AboutHTML  string       `yaml:"-" json:"about_html"`
	Skills     []Skill      `yaml:"skills" json:"skills" validate:"dive"`
	Experience []Experience `yaml:"experience" json:"experience" validate:"dive"`
	Education  []Education  `yaml:"education" json:"education" validate:"dive"`
	Projects   []Project    `yaml:"projects" json:"projects" validate:"dive"`
	Contact    ContactInfo  `yaml:"contact" json:"contact"`
	Social     []Link       `yaml:"social" json:"social" validate:"dive"`
}

// Load reads the portfolio from path, or the built-in content when path is empty.
func Load(path string) (*Portfolio, error) {
	if path == "" {
		return Parse(bytes.NewReader(defaultPortfolio))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("content: open %s: %w", path, err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("content: %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes, validates and renders a portfolio document.
// Unknown keys are rejected so typos surface at start-up.
func Parse(r io.Reader) (*Portfolio, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Portfolio
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty portfolio document")
		}
		return nil, fmt.Errorf("decode portfolio: %w", err)
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	html, err := renderMarkdown(p.About)
	if err != nil {
		return nil, err
	}
	p.AboutHTML = html

	return &p, nil
}

func (p *Portfolio) validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("invalid portfolio: %w", err)
	}

	seen := make(map[int]struct{}, len(p.Projects))
	for _, project := range p.Projects {
		if _, dup := seen[project.ID]; dup {
			return fmt.Errorf("invalid portfolio: duplicate project id %d", project.ID)
		}
		seen[project.ID] = struct{}{}
	}
	return nil
}

// Categories lists project categories in first-seen order, led by CategoryAll.
func (p *Portfolio) Categories() []string {
	categories := []string{CategoryAll}
	seen := map[string]bool{CategoryAll: true}
	for _, project := range p.Projects {
		if !seen[project.Category] {
			seen[project.Category] = true
			categories = append(categories, project.Category)
		}
	}
	return categories
}

// ProjectsIn filters projects by category. Empty or CategoryAll returns every project.
func (p *Portfolio) ProjectsIn(category string) []Project {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return p.Projects
	}

	projects := make([]Project, 0, len(p.Projects))
	for _, project := range p.Projects {
		if strings.EqualFold(project.Category, category) {
			projects = append(projects, project)
		}
	}
	return projects
}

// Project finds a project by id.
func (p *Portfolio) Project(id int) (Project, bool) {
	for _, project := range p.Projects {
		if project.ID == id {
			return project, true
		}
	}
	return Project{}, false
}

func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render about: %w", err)
	}
	return bluemonday.UGCPolicy().Sanitize(buf.String()), nil
}
