package generator

import (
	"slices"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Provider produces realistic values for a named template such as "email".
// It reports false when it does not know the template, in which case the
// generator falls back to a random string.
type Provider interface {
	Value(template string) (string, bool)
}

// FakerProvider is the default Provider.
type FakerProvider struct {
	faker     *gofakeit.Faker
	templates map[string]func() string
}

// NewFakerProvider returns a provider whose output is reproducible for a
// given seed, except for the uuid4 and nanoid templates.
func NewFakerProvider(seed uint64) *FakerProvider {
	f := gofakeit.New(seed)
	p := &FakerProvider{faker: f}
	p.templates = map[string]func() string{
		"name":         f.Name,
		"first_name":   f.FirstName,
		"last_name":    f.LastName,
		"email":        f.Email,
		"phone_number": f.Phone,
		"address":      f.Street,
		"street":       f.Street,
		"city":         f.City,
		"country":      f.Country,
		"zipcode":      f.Zip,
		"company":      f.Company,
		"job":          f.JobTitle,
		"user_name":    f.Username,
		"url":          f.URL,
		"ipv4":         f.IPv4Address,
		"word":         f.Word,
		"color_name":   f.Color,
		"text":         f.Phrase,
		"uuid4":        uuid.NewString,
		"nanoid":       newNanoID,
	}
	return p
}

// Value implements Provider.
func (p *FakerProvider) Value(template string) (string, bool) {
	fn, ok := p.templates[template]
	if !ok {
		return "", false
	}
	v := fn()
	if v == "" && template == "nanoid" {
		return "", false
	}
	return v, true
}

// Templates lists the template names the provider understands.
func (p *FakerProvider) Templates() []string {
	names := make([]string, 0, len(p.templates))
	for name := range p.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newNanoID() string {
	id, err := gonanoid.New()
	if err != nil {
		return ""
	}
	return id
}
